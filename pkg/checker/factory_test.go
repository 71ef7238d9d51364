package checker

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.goms.io/aks/AKSupport/pkg/cluster"
	"go.goms.io/aks/AKSupport/pkg/config"
	"go.goms.io/aks/AKSupport/pkg/notify"
)

func factoryConfig() *config.Config {
	cfg := &config.Config{
		Azure: config.AzureConfig{
			SubscriptionID: "sub",
			TenantID:       "tenant",
			ClientID:       "client",
			ClientSecret:   "secret",
			Region:         "westeurope",
		},
		Cluster: config.ClusterConfig{
			Name: "prod-aks",
			URL:  "https://portal.example/cluster",
		},
		Notifications: config.NotificationsConfig{
			FailFast: true,
			Webhook:  config.WebhookConfig{URL: "https://hooks.example/abc"},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func TestNewFromConfig_WiresOverrideAndChannels(t *testing.T) {
	c, err := NewFromConfig(factoryConfig(), "1.24.9", logrus.New())
	require.NoError(t, err)

	assert.Equal(t, Options{
		SubscriptionID: "sub",
		Region:         "westeurope",
		ClusterName:    "prod-aks",
		ClusterURL:     "https://portal.example/cluster",
	}, c.opts)

	running, err := c.source.RunningVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.24.9", running)
	assert.IsType(t, cluster.StaticSource(""), c.source)

	dispatcher, ok := c.notifier.(*notify.Dispatcher)
	require.True(t, ok)
	assert.True(t, dispatcher.FailFast)
	require.Len(t, dispatcher.Channels(), 1)
	assert.Equal(t, "teams-webhook", dispatcher.Channels()[0].Name())
}

func TestNewFromConfig_IncompleteServicePrincipal(t *testing.T) {
	cfg := factoryConfig()
	cfg.Azure.ClientSecret = ""

	_, err := NewFromConfig(cfg, "1.24.9", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service principal credentials are incomplete")
}
