package auth

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
)

// DefaultAuthority is the Microsoft Entra ID host used when a Credential carries no authority.
var DefaultAuthority = strings.TrimSuffix(cloud.AzurePublic.ActiveDirectoryAuthorityHost, "/")

// Credential identifies a service principal for the client-credentials grant.
// It is immutable once handed to a TokenCache.
type Credential struct {
	Authority    string // e.g. https://login.microsoftonline.com
	TenantID     string
	ClientID     string
	ClientSecret string
	// Legacy selects the v1 token endpoint, which takes a resource instead of a scope.
	Legacy bool
}

// IsComplete reports whether all fields required for a token request are set.
func (c Credential) IsComplete() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != ""
}

// TokenURL returns the token endpoint of the credential's tenant.
func (c Credential) TokenURL() string {
	authority := strings.TrimSuffix(c.Authority, "/")
	if authority == "" {
		authority = DefaultAuthority
	}
	if c.Legacy {
		return fmt.Sprintf("%s/%s/oauth2/token", authority, c.TenantID)
	}
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", authority, c.TenantID)
}

// String never includes the client secret.
func (c Credential) String() string {
	return fmt.Sprintf("Credential{tenant=%s, clientId=%s, clientSecret=<redacted>}", c.TenantID, c.ClientID)
}

// GoString keeps %#v from printing the secret.
func (c Credential) GoString() string {
	return c.String()
}
