package utils

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds every outbound call when no timeout is configured.
const DefaultHTTPTimeout = 90 * time.Second

// maxBodySize caps how much of a response body is read into memory.
const maxBodySize = 4 << 20

// NewHTTPClient creates an HTTP client with the given timeout (DefaultHTTPTimeout when zero).
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}

// BodyTooLargeError is returned by ReadBody when a response exceeds the read limit.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeds %d bytes", e.Limit)
}

// ReadBody reads a response body up to a fixed limit.
func ReadBody(resp *http.Response) ([]byte, error) {
	return readBodyLimit(resp, maxBodySize)
}

func readBodyLimit(resp *http.Response, limit int64) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, &BodyTooLargeError{Limit: limit}
	}
	return body, nil
}

// IsSuccess reports whether resp carries a 2xx status code.
func IsSuccess(resp *http.Response) bool {
	return resp != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299
}
