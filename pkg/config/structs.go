package config

import (
	"fmt"
	"strings"
	"time"

	// registers the ResourceManager service of every known cloud
	_ "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
)

// Config represents the complete AKSupport configuration structure.
// It contains Azure access settings, the monitored cluster, notification channels and agent settings.
type Config struct {
	Azure         AzureConfig         `json:"azure"`
	Cluster       ClusterConfig       `json:"cluster"`
	Notifications NotificationsConfig `json:"notifications"`
	Agent         AgentConfig         `json:"agent"`
}

// AzureConfig holds the settings used to query the AKS support catalog.
type AzureConfig struct {
	SubscriptionID      string `json:"subscriptionId"`      // Azure subscription ID
	TenantID            string `json:"tenantId"`            // Azure AD tenant of the app registration
	ClientID            string `json:"clientId"`            // Azure AD application (client) ID
	ClientSecret        string `json:"clientSecret"`        // Azure AD application client secret
	Region              string `json:"region"`              // AKS region, e.g. "westeurope"
	Cloud               string `json:"cloud"`               // Azure cloud environment (defaults to AzurePublicCloud)
	UseManagedIdentity  bool   `json:"useManagedIdentity"`  // Use managed identity instead of a client secret
	LegacyTokenEndpoint bool   `json:"legacyTokenEndpoint"` // Use the v1 token endpoint with a resource parameter
}

// ClusterConfig describes the monitored AKS cluster.
type ClusterConfig struct {
	Name                  string `json:"name"`                  // Display name used in notifications
	URL                   string `json:"url"`                   // Portal link used in notifications
	ResourceID            string `json:"resourceId"`            // Full resource ID of the cluster
	VersionSource         string `json:"versionSource"`         // apiserver or managedCluster
	Kubeconfig            string `json:"kubeconfig"`            // Optional kubeconfig, in-cluster config otherwise
	InsecureSkipTLSVerify bool   `json:"insecureSkipTLSVerify"` // Skip API server certificate checks
	ResourceGroup         string `json:"-"`                     // will be populated from ResourceID
}

// NotificationsConfig holds the notification channel settings.
type NotificationsConfig struct {
	ImageURL string        `json:"imageUrl"` // Avatar shown on the cards
	FailFast bool          `json:"failFast"` // Stop at the first failed channel
	Webhook  WebhookConfig `json:"webhook"`
	Mail     MailConfig    `json:"mail"`
}

// WebhookConfig holds the Teams incoming webhook settings.
type WebhookConfig struct {
	URL string `json:"url"`
}

// MailConfig holds the Microsoft Graph mail settings. The channel is active only when every field is set.
type MailConfig struct {
	TenantID         string `json:"tenantId"`
	ClientID         string `json:"clientId"`
	ClientSecret     string `json:"clientSecret"`
	SenderID         string `json:"senderId"`
	RecipientAddress string `json:"recipientAddress"`
}

// AgentConfig holds agent-specific operational configuration.
type AgentConfig struct {
	LogLevel           string `json:"logLevel"`           // Logging level: debug, info, warning, error
	LogDir             string `json:"logDir"`             // Optional directory for a rotated log file
	HTTPTimeoutSeconds int    `json:"httpTimeoutSeconds"` // Timeout of every outbound HTTP call
}

// IsSPConfigured checks if service principal credentials are provided in the configuration
func (cfg *Config) IsSPConfigured() bool {
	return cfg.Azure.TenantID != "" &&
		cfg.Azure.ClientID != "" &&
		cfg.Azure.ClientSecret != ""
}

// IsWebhookConfigured checks if the Teams webhook channel can be activated
func (cfg *Config) IsWebhookConfigured() bool {
	return cfg.Notifications.Webhook.URL != ""
}

// IsMailConfigured checks if every setting of the mail channel is present
func (cfg *Config) IsMailConfigured() bool {
	m := cfg.Notifications.Mail
	return m.TenantID != "" &&
		m.ClientID != "" &&
		m.ClientSecret != "" &&
		m.SenderID != "" &&
		m.RecipientAddress != ""
}

// IsMailPartiallyConfigured reports a mail channel with some but not all settings present
func (cfg *Config) IsMailPartiallyConfigured() bool {
	m := cfg.Notifications.Mail
	set := m.TenantID != "" || m.ClientID != "" || m.ClientSecret != "" || m.SenderID != "" || m.RecipientAddress != ""
	return set && !cfg.IsMailConfigured()
}

// GetClusterName returns the cluster display name, falling back to the name in the resource ID
func (cfg *Config) GetClusterName() string {
	if cfg.Cluster.Name != "" {
		return cfg.Cluster.Name
	}
	if matches := AKSClusterResourceIDPattern.FindStringSubmatch(cfg.Cluster.ResourceID); len(matches) == 4 {
		return matches[3]
	}
	return ""
}

// GetClusterURL returns the configured cluster link or a portal link derived from the resource ID
func (cfg *Config) GetClusterURL() string {
	if cfg.Cluster.URL != "" {
		return cfg.Cluster.URL
	}
	if cfg.Cluster.ResourceID == "" {
		return ""
	}
	portal, ok := portalURLs[cfg.Azure.Cloud]
	if !ok {
		portal = portalURLs[defaultAzureCloud]
	}
	if cfg.Azure.TenantID != "" {
		return fmt.Sprintf("%s/#@%s/resource%s/overview", portal, cfg.Azure.TenantID, cfg.Cluster.ResourceID)
	}
	return fmt.Sprintf("%s/#resource%s/overview", portal, cfg.Cluster.ResourceID)
}

// GetHTTPTimeout returns the outbound HTTP timeout as a duration
func (cfg *Config) GetHTTPTimeout() time.Duration {
	return time.Duration(cfg.Agent.HTTPTimeoutSeconds) * time.Second
}

// GetCloudConfiguration returns the azcore cloud configuration for the configured cloud
func (cfg *Config) GetCloudConfiguration() cloud.Configuration {
	if c, ok := azureClouds[cfg.Azure.Cloud]; ok {
		return c
	}
	return cloud.AzurePublic
}

// GetAuthorityHost returns the Azure AD authority host without a trailing slash
func (cfg *Config) GetAuthorityHost() string {
	return strings.TrimSuffix(cfg.GetCloudConfiguration().ActiveDirectoryAuthorityHost, "/")
}

// GetResourceManagerEndpoint returns the ARM endpoint of the configured cloud
func (cfg *Config) GetResourceManagerEndpoint() string {
	return strings.TrimSuffix(cfg.GetCloudConfiguration().Services[cloud.ResourceManager].Endpoint, "/")
}

// GetResourceManagerScope returns the OAuth2 scope for ARM calls
func (cfg *Config) GetResourceManagerScope() string {
	return cfg.GetResourceManagerEndpoint() + "/.default"
}

// GetGraphEndpoint returns the Microsoft Graph endpoint of the configured cloud
func (cfg *Config) GetGraphEndpoint() string {
	if g, ok := graphEndpoints[cfg.Azure.Cloud]; ok {
		return g
	}
	return graphEndpoints[defaultAzureCloud]
}
