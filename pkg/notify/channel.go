package notify

import (
	"context"
	"fmt"
)

// Channel delivers an Event to one destination.
// Send reports whether the destination acknowledged the delivery.
type Channel interface {
	Name() string
	Send(ctx context.Context, event Event) (bool, error)
}

// DeliveryError is returned when a destination answers with a non-success status.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s delivery failed with status %d", e.Channel, e.StatusCode)
	}
	return fmt.Sprintf("%s delivery failed with status %d: %s", e.Channel, e.StatusCode, e.Body)
}

// UnacknowledgedError records a delivery the destination accepted without confirming it.
type UnacknowledgedError struct {
	Channel string
}

func (e *UnacknowledgedError) Error() string {
	return fmt.Sprintf("%s did not acknowledge the notification", e.Channel)
}
