package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/spf13/viper"
)

const (
	// Default configuration values
	defaultLogLevel           = "info"
	defaultAzureCloud         = "AzurePublicCloud"
	defaultHTTPTimeoutSeconds = 90
	defaultVersionSource      = VersionSourceAPIServer

	// VersionSourceAPIServer reads the running version from the Kubernetes API server.
	VersionSourceAPIServer = "apiserver"
	// VersionSourceManagedCluster reads the running version from the AKS resource in ARM.
	VersionSourceManagedCluster = "managedCluster"
)

// envBindings maps configuration keys to the environment variables a CronJob manifest sets.
var envBindings = map[string]string{
	"azure.subscriptionId":                "AZURE_SUBSCRIPTION_ID",
	"azure.tenantId":                      "AZURE_APP_TENANT",
	"azure.clientId":                      "AZURE_APP_ID",
	"azure.clientSecret":                  "AZURE_APP_PASSWORD",
	"azure.region":                        "AZURE_AKS_REGION",
	"azure.cloud":                         "AZURE_CLOUD",
	"azure.useManagedIdentity":            "AZURE_USE_MANAGED_IDENTITY",
	"azure.legacyTokenEndpoint":           "AZURE_LEGACY_TOKEN_ENDPOINT",
	"cluster.name":                        "AZURE_AKS_CLUSTER_NAME",
	"cluster.url":                         "AZURE_AKS_CLUSTER_URL",
	"cluster.resourceId":                  "AZURE_AKS_CLUSTER_RESOURCE_ID",
	"cluster.versionSource":               "AKSUPPORT_VERSION_SOURCE",
	"cluster.kubeconfig":                  "KUBECONFIG",
	"cluster.insecureSkipTLSVerify":       "AKSUPPORT_INSECURE_SKIP_TLS_VERIFY",
	"notifications.imageUrl":              "AVATAR_IMAGE_URL",
	"notifications.failFast":              "AKSUPPORT_NOTIFY_FAIL_FAST",
	"notifications.webhook.url":           "TEAMS_CHANNEL_WEBHOOK_URL",
	"notifications.mail.tenantId":         "MAIL_APP_TENANT",
	"notifications.mail.clientId":         "MAIL_APP_ID",
	"notifications.mail.clientSecret":     "MAIL_APP_PASSWORD",
	"notifications.mail.senderId":         "MAIL_SENDER_ID",
	"notifications.mail.recipientAddress": "MAIL_RECIPIENT_ADDRESS",
	"agent.logLevel":                      "AKSUPPORT_LOG_LEVEL",
	"agent.logDir":                        "AKSUPPORT_LOG_DIR",
	"agent.httpTimeoutSeconds":            "AKSUPPORT_HTTP_TIMEOUT_SECONDS",
}

// azureClouds defines the supported Azure cloud environments
var azureClouds = map[string]cloud.Configuration{
	"AzurePublicCloud":       cloud.AzurePublic,
	"AzureChinaCloud":        cloud.AzureChina,
	"AzureUSGovernmentCloud": cloud.AzureGovernment,
}

var graphEndpoints = map[string]string{
	"AzurePublicCloud":       "https://graph.microsoft.com",
	"AzureChinaCloud":        "https://microsoftgraph.chinacloudapi.cn",
	"AzureUSGovernmentCloud": "https://graph.microsoft.us",
}

var portalURLs = map[string]string{
	"AzurePublicCloud":       "https://portal.azure.com",
	"AzureChinaCloud":        "https://portal.azure.cn",
	"AzureUSGovernmentCloud": "https://portal.azure.us",
}

// Singleton instance for configuration
var (
	configInstance *Config
	configMutex    sync.RWMutex
)

// GetConfig returns the singleton configuration instance.
// Returns nil if configuration has not been loaded yet. Use LoadConfig() first.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return configInstance
}

// LoadConfig loads configuration from an optional JSON or YAML file and environment variables.
// Environment variables take precedence over the file, so a CronJob can run without any file.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s to %s: %w", key, env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if filepath.Ext(configPath) == "" {
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", configPath, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	populateClusterInfoFromConfig(config)

	configMutex.Lock()
	defer configMutex.Unlock()
	configInstance = config

	return config, nil
}

// SetDefaults sets default values for any missing configuration fields
func (c *Config) SetDefaults() {
	if c.Azure.Cloud == "" {
		c.Azure.Cloud = defaultAzureCloud
	}
	if c.Cluster.VersionSource == "" {
		c.Cluster.VersionSource = defaultVersionSource
	}
	if c.Agent.LogLevel == "" {
		c.Agent.LogLevel = defaultLogLevel
	}
	if c.Agent.HTTPTimeoutSeconds <= 0 {
		c.Agent.HTTPTimeoutSeconds = defaultHTTPTimeoutSeconds
	}
}

// AKSClusterResourceIDPattern is AKS cluster resource ID regex pattern with capture groups
// Format: /subscriptions/{subscription-id}/resourceGroups/{resource-group}/providers/Microsoft.ContainerService/managedClusters/{cluster-name}
var AKSClusterResourceIDPattern = regexp.MustCompile(`(?i)^/subscriptions/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})/resourceGroups/([a-z0-9_\-\.\(\)]+)/providers/Microsoft\.ContainerService/managedClusters/([a-z0-9_\-]+)$`)

// validateAzureResourceID validates the format of an AKS cluster resource ID using regex pattern matching
func validateAzureResourceID(resourceID string) error {
	if !AKSClusterResourceIDPattern.MatchString(resourceID) {
		return fmt.Errorf("invalid AKS cluster resource ID format. Expected format:" +
			"/subscriptions/{subscription-id}/resourceGroups/{resource-group}/providers/Microsoft.ContainerService/managedClusters/{cluster-name}")
	}
	return nil
}

// validLogLevels defines the allowed logging levels for the agent
var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warning": true,
	"error":   true,
}

var validVersionSources = map[string]bool{
	VersionSourceAPIServer:      true,
	VersionSourceManagedCluster: true,
}

// Validate validates the configuration and ensures all required fields are set
func (c *Config) Validate() error {
	if c.Azure.SubscriptionID == "" {
		return fmt.Errorf("azure.subscriptionId is required")
	}
	if c.Azure.Region == "" {
		return fmt.Errorf("azure.region is required")
	}

	// Either managed identity or a complete service principal
	if !c.Azure.UseManagedIdentity && !c.IsSPConfigured() {
		if c.Azure.TenantID == "" {
			return fmt.Errorf("azure.tenantId is required unless azure.useManagedIdentity is set")
		}
		if c.Azure.ClientID == "" {
			return fmt.Errorf("azure.clientId is required unless azure.useManagedIdentity is set")
		}
		if c.Azure.ClientSecret == "" {
			return fmt.Errorf("azure.clientSecret is required unless azure.useManagedIdentity is set")
		}
	}

	if _, ok := azureClouds[c.Azure.Cloud]; !ok {
		return fmt.Errorf("invalid azure.cloud: %s. Valid values are: AzurePublicCloud, AzureChinaCloud, AzureUSGovernmentCloud", c.Azure.Cloud)
	}

	if !validVersionSources[c.Cluster.VersionSource] {
		return fmt.Errorf("invalid cluster.versionSource: %s. Valid values are: apiserver, managedCluster", c.Cluster.VersionSource)
	}
	if c.Cluster.VersionSource == VersionSourceManagedCluster && c.Cluster.ResourceID == "" {
		return fmt.Errorf("cluster.resourceId is required when cluster.versionSource is managedCluster")
	}
	if c.Cluster.ResourceID != "" {
		if err := validateAzureResourceID(c.Cluster.ResourceID); err != nil {
			return fmt.Errorf("invalid cluster.resourceId: %w", err)
		}
	}

	if !validLogLevels[c.Agent.LogLevel] {
		return fmt.Errorf("invalid agent.logLevel: %s. Valid values are: debug, info, warning, error", c.Agent.LogLevel)
	}

	return nil
}

// populateClusterInfoFromConfig extracts cluster information from the resource ID
// This function should only be called after validateAzureResourceID confirms the format is correct
func populateClusterInfoFromConfig(cfg *Config) {
	matches := AKSClusterResourceIDPattern.FindStringSubmatch(cfg.Cluster.ResourceID)
	if len(matches) < 4 {
		return
	}

	cfg.Cluster.ResourceGroup = matches[2]
	if cfg.Cluster.Name == "" {
		cfg.Cluster.Name = matches[3]
	}
}
