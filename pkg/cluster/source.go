package cluster

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/sirupsen/logrus"

	"go.goms.io/aks/AKSupport/pkg/config"
)

// VersionSource reports the Kubernetes version a cluster is running.
type VersionSource interface {
	RunningVersion(ctx context.Context) (string, error)
}

// StaticSource returns a fixed version. It backs the version argument of the check command.
type StaticSource string

// RunningVersion implements VersionSource.
func (s StaticSource) RunningVersion(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("no version given")
	}
	return string(s), nil
}

// NewSourceFromConfig selects the version source: override wins, then cluster.versionSource.
// cred is used only by the managed cluster source.
func NewSourceFromConfig(cfg *config.Config, cred azcore.TokenCredential, override string, logger *logrus.Logger) (VersionSource, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if override != "" {
		logger.Infof("Using version %s given on the command line", override)
		return StaticSource(override), nil
	}

	switch cfg.Cluster.VersionSource {
	case config.VersionSourceAPIServer, "":
		source, err := NewAPIServerSource(APIServerOptions{
			Kubeconfig:            cfg.Cluster.Kubeconfig,
			InsecureSkipTLSVerify: cfg.Cluster.InsecureSkipTLSVerify,
			Timeout:               cfg.GetHTTPTimeout(),
		}, logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	case config.VersionSourceManagedCluster:
		source, err := NewManagedClusterSource(cfg.Cluster.ResourceID, cred, cfg.GetCloudConfiguration(), logger)
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unknown version source %q", cfg.Cluster.VersionSource)
	}
}
