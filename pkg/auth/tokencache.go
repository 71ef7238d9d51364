package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenSource performs the actual token request on a cache miss.
// It reports the token lifetime so that expiry is measured on the cache's clock.
type tokenSource interface {
	fetch(ctx context.Context, scope string) (string, time.Duration, error)
}

// cachedToken is the single slot held by a TokenCache.
type cachedToken struct {
	scope       string
	accessToken string
	expiresAt   time.Time
}

// TokenCache holds one access token for one scope at a time.
// Asking for a different scope replaces the cached entry. It is safe for concurrent use.
type TokenCache struct {
	source tokenSource
	now    func() time.Time

	mu    sync.Mutex
	token *cachedToken
}

// NewTokenCache creates a cache that refreshes tokens with the client-credentials grant.
// A nil client falls back to http.DefaultClient.
func NewTokenCache(cred Credential, client *http.Client) *TokenCache {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenCache{
		source: &clientSecretSource{cred: cred, client: client},
		now:    time.Now,
	}
}

// NewManagedIdentityTokenCache creates a cache backed by the pod or VM managed identity.
// clientID selects a user-assigned identity and may be empty.
func NewManagedIdentityTokenCache(clientID string) (*TokenCache, error) {
	opts := &azidentity.ManagedIdentityCredentialOptions{}
	if clientID != "" {
		opts.ID = azidentity.ClientID(clientID)
	}
	cred, err := azidentity.NewManagedIdentityCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create managed identity credential: %w", err)
	}
	return &TokenCache{
		source: &sdkCredentialSource{cred: cred},
		now:    time.Now,
	}, nil
}

// GetToken returns a valid access token for scope, requesting a new one only when
// the cached token is missing, expired or was issued for another scope.
func (c *TokenCache) GetToken(ctx context.Context, scope string) (string, error) {
	token, _, err := c.getToken(ctx, scope)
	return token, err
}

func (c *TokenCache) getToken(ctx context.Context, scope string) (string, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t := c.token; t != nil && t.scope == scope && c.now().Before(t.expiresAt) {
		return t.accessToken, t.expiresAt, nil
	}

	accessToken, lifetime, err := c.source.fetch(ctx, scope)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := c.now().Add(lifetime)
	c.token = &cachedToken{scope: scope, accessToken: accessToken, expiresAt: expiresAt}
	return accessToken, expiresAt, nil
}

// Credential exposes the cache as an azcore.TokenCredential so Azure SDK clients
// share the cached token.
func (c *TokenCache) Credential() azcore.TokenCredential {
	return &cacheCredential{cache: c}
}

type cacheCredential struct {
	cache *TokenCache
}

func (cc *cacheCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if len(opts.Scopes) == 0 {
		return azcore.AccessToken{}, errors.New("no scope requested")
	}
	token, expiresAt, err := cc.cache.getToken(ctx, opts.Scopes[0])
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: token, ExpiresOn: expiresAt}, nil
}

// clientSecretSource requests tokens from the Entra ID token endpoint.
type clientSecretSource struct {
	cred   Credential
	client *http.Client
}

func (s *clientSecretSource) fetch(ctx context.Context, scope string) (string, time.Duration, error) {
	cfg := clientcredentials.Config{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
		TokenURL:     s.cred.TokenURL(),
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if s.cred.Legacy {
		cfg.EndpointParams = url.Values{"resource": {strings.TrimSuffix(scope, "/.default")}}
	} else {
		cfg.Scopes = []string{scope}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	tk, err := cfg.Token(ctx)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			return "", 0, &AuthenticationError{StatusCode: rErr.Response.StatusCode, Body: string(rErr.Body)}
		}
		return "", 0, fmt.Errorf("failed to request access token: %w", err)
	}
	// A token without expires_in is used once and never cached.
	if tk.Expiry.IsZero() {
		return tk.AccessToken, 0, nil
	}
	return tk.AccessToken, time.Until(tk.Expiry), nil
}

// sdkCredentialSource delegates to an Azure SDK credential.
type sdkCredentialSource struct {
	cred azcore.TokenCredential
}

func (s *sdkCredentialSource) fetch(ctx context.Context, scope string) (string, time.Duration, error) {
	tk, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return "", 0, fmt.Errorf("failed to get access token: %w", err)
	}
	return tk.Token, time.Until(tk.ExpiresOn), nil
}
