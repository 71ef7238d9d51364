package auth

import "fmt"

// AuthenticationError is returned when the token endpoint answers with a non-2xx status.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("token request failed with status %d: %s", e.StatusCode, e.Body)
}
