package auth

import (
	"fmt"
	"net/http"
)

// AuthorizedCaller sends requests with a bearer token obtained from a TokenCache.
type AuthorizedCaller struct {
	client *http.Client
	tokens *TokenCache
	scope  string
}

// NewAuthorizedCaller binds an HTTP client and token cache to one scope.
func NewAuthorizedCaller(client *http.Client, tokens *TokenCache, scope string) *AuthorizedCaller {
	if client == nil {
		client = http.DefaultClient
	}
	return &AuthorizedCaller{client: client, tokens: tokens, scope: scope}
}

// Do sends req exactly once. A 401 is returned to the caller as is.
func (c *AuthorizedCaller) Do(req *http.Request) (*http.Response, error) {
	token, err := c.tokens.GetToken(req.Context(), c.scope)
	if err != nil {
		return nil, fmt.Errorf("failed to get token for %s: %w", c.scope, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.client.Do(req)
}
