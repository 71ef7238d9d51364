package checker

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"go.goms.io/aks/AKSupport/pkg/auth"
	"go.goms.io/aks/AKSupport/pkg/catalog"
	"go.goms.io/aks/AKSupport/pkg/cluster"
	"go.goms.io/aks/AKSupport/pkg/config"
	"go.goms.io/aks/AKSupport/pkg/notify"
	"go.goms.io/aks/AKSupport/pkg/utils"
)

// NewFromConfig wires a checker from configuration. override, when set, replaces
// the configured version source with a fixed version.
func NewFromConfig(cfg *config.Config, override string, logger *logrus.Logger) (*Checker, error) {
	if logger == nil {
		logger = logrus.New()
	}
	client := utils.NewHTTPClient(cfg.GetHTTPTimeout())

	tokens, err := newTokenCache(cfg, client, logger)
	if err != nil {
		return nil, err
	}

	source, err := cluster.NewSourceFromConfig(cfg, tokens.Credential(), override, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create version source: %w", err)
	}

	caller := auth.NewAuthorizedCaller(client, tokens, cfg.GetResourceManagerScope())
	fetcher := catalog.NewClient(caller, cfg.GetResourceManagerEndpoint(), logger)

	opts := Options{
		SubscriptionID: cfg.Azure.SubscriptionID,
		Region:         cfg.Azure.Region,
		ClusterName:    cfg.GetClusterName(),
		ClusterURL:     cfg.GetClusterURL(),
	}
	return New(opts, source, fetcher, nil, notify.NewDispatcherFromConfig(cfg, logger), logger), nil
}

func newTokenCache(cfg *config.Config, client *http.Client, logger *logrus.Logger) (*auth.TokenCache, error) {
	if cfg.Azure.UseManagedIdentity {
		logger.Info("Authenticating to Azure with managed identity")
		tokens, err := auth.NewManagedIdentityTokenCache(cfg.Azure.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to set up managed identity: %w", err)
		}
		return tokens, nil
	}

	cred := auth.Credential{
		Authority:    cfg.GetAuthorityHost(),
		TenantID:     cfg.Azure.TenantID,
		ClientID:     cfg.Azure.ClientID,
		ClientSecret: cfg.Azure.ClientSecret,
		Legacy:       cfg.Azure.LegacyTokenEndpoint,
	}
	if !cred.IsComplete() {
		return nil, fmt.Errorf("service principal credentials are incomplete")
	}
	logger.Infof("Authenticating to Azure with service principal %s", cred.ClientID)
	return auth.NewTokenCache(cred, client), nil
}
