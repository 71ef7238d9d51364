package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// DispatchResult represents the outcome of one NotifyAll call
type DispatchResult struct {
	Delivered int             `json:"delivered" yaml:"delivered"`
	Failed    int             `json:"failed" yaml:"failed"`
	Skipped   int             `json:"skipped" yaml:"skipped"`
	Duration  time.Duration   `json:"duration" yaml:"duration"`
	Channels  []ChannelResult `json:"channels" yaml:"channels"`
}

// ChannelResult represents the outcome of a single channel
type ChannelResult struct {
	Channel   string        `json:"channel" yaml:"channel"`
	Delivered bool          `json:"delivered" yaml:"delivered"`
	Skipped   bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Dispatcher fans an Event out to the registered channels in registration order.
type Dispatcher struct {
	// FailFast stops at the first failed channel and reports the rest as skipped.
	// By default every channel runs and failures are aggregated.
	FailFast bool

	channels []Channel
	logger   *logrus.Logger
}

// NewDispatcher creates a dispatcher without channels
func NewDispatcher(logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Dispatcher{logger: logger}
}

// RegisterChannel appends a channel. Registration happens before NotifyAll.
func (d *Dispatcher) RegisterChannel(ch Channel) {
	d.channels = append(d.channels, ch)
}

// Channels returns the registered channels in order
func (d *Dispatcher) Channels() []Channel {
	out := make([]Channel, len(d.channels))
	copy(out, d.channels)
	return out
}

// NotifyAll sends event to every channel sequentially.
// The returned error aggregates every channel failure; an unacknowledged delivery counts as a failure.
func (d *Dispatcher) NotifyAll(ctx context.Context, event Event) (*DispatchResult, error) {
	startTime := time.Now()
	result := &DispatchResult{
		Channels: make([]ChannelResult, 0, len(d.channels)),
	}

	if len(d.channels) == 0 {
		d.logger.Warn("No notification channels are configured, skipping notification")
		return result, nil
	}

	d.logger.Infof("Notifying %d channel(s) about cluster %s (%s)", len(d.channels), event.ClusterName, event.Status)

	var errs error
	for i, ch := range d.channels {
		channelResult, err := d.send(ctx, ch, event)
		result.Channels = append(result.Channels, channelResult)

		if err == nil {
			result.Delivered++
			continue
		}

		result.Failed++
		errs = multierr.Append(errs, err)

		if d.FailFast {
			for _, rest := range d.channels[i+1:] {
				result.Channels = append(result.Channels, ChannelResult{Channel: rest.Name(), Skipped: true})
				result.Skipped++
			}
			d.logger.Errorf("Notification failed at channel %s, skipping %d remaining channel(s)", ch.Name(), result.Skipped)
			break
		}
		d.logger.Warnf("Notification channel %s failed: %s (continuing with remaining channels)", ch.Name(), err)
	}

	result.Duration = time.Since(startTime)
	if errs != nil {
		return result, fmt.Errorf("%d of %d notification channel(s) failed: %w", result.Failed, len(d.channels), errs)
	}

	d.logger.Infof("Notification delivered to %d channel(s) (duration: %v)", result.Delivered, result.Duration)
	return result, nil
}

// send runs one channel and converts its outcome into a ChannelResult
func (d *Dispatcher) send(ctx context.Context, ch Channel, event Event) (ChannelResult, error) {
	name := ch.Name()
	startTime := time.Now()

	d.logger.Debugf("Sending notification through %s", name)

	acknowledged, err := ch.Send(ctx, event)
	if err == nil && !acknowledged {
		err = &UnacknowledgedError{Channel: name}
	}
	if err != nil {
		err = fmt.Errorf("channel %s: %w", name, err)
		return ChannelResult{
			Channel:  name,
			Duration: time.Since(startTime),
			Error:    err.Error(),
		}, err
	}

	d.logger.Infof("Notification sent through %s with duration %s", name, time.Since(startTime))
	return ChannelResult{
		Channel:   name,
		Delivered: true,
		Duration:  time.Since(startTime),
	}, nil
}
