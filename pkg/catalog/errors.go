package catalog

import "fmt"

// UpstreamError is returned when the orchestrators endpoint answers with a non-2xx status.
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// MalformedResponseError is returned when a 2xx body does not have the expected shape.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed orchestrators response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed orchestrators response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
