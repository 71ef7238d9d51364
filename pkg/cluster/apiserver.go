package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// APIServerOptions configures the connection to the Kubernetes API server.
type APIServerOptions struct {
	// Kubeconfig selects a kubeconfig file. Empty uses the in-cluster service account.
	Kubeconfig            string
	InsecureSkipTLSVerify bool
	Timeout               time.Duration
}

// APIServerSource reads gitVersion from the /version endpoint of the API server.
type APIServerSource struct {
	client discovery.ServerVersionInterface
	logger *logrus.Logger
}

// NewAPIServerSource creates a source for the in-cluster or kubeconfig API server.
func NewAPIServerSource(opts APIServerOptions, logger *logrus.Logger) (*APIServerSource, error) {
	restConfig, err := buildRESTConfig(opts)
	if err != nil {
		return nil, err
	}

	client, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}
	return NewAPIServerSourceWithClient(client, logger), nil
}

// NewAPIServerSourceWithClient allows injecting a discovery client (primarily for tests).
func NewAPIServerSourceWithClient(client discovery.ServerVersionInterface, logger *logrus.Logger) *APIServerSource {
	if logger == nil {
		logger = logrus.New()
	}
	return &APIServerSource{client: client, logger: logger}
}

// RunningVersion implements VersionSource.
func (s *APIServerSource) RunningVersion(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := s.client.ServerVersion()
	if err != nil {
		return "", fmt.Errorf("failed to get version from the Kubernetes API server: %w", err)
	}
	if info == nil || info.GitVersion == "" {
		return "", fmt.Errorf("kubernetes API server returned an empty gitVersion")
	}

	s.logger.Debugf("Kubernetes API server reports gitVersion %s (platform %s)", info.GitVersion, info.Platform)
	return info.GitVersion, nil
}

func buildRESTConfig(opts APIServerOptions) (*rest.Config, error) {
	var (
		restConfig *rest.Config
		err        error
	)
	if opts.Kubeconfig != "" {
		restConfig, err = clientcmd.BuildConfigFromFlags("", opts.Kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", opts.Kubeconfig, err)
		}
	} else {
		restConfig, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load in-cluster config: %w", err)
		}
	}

	if opts.InsecureSkipTLSVerify {
		restConfig.Insecure = true
		restConfig.CAFile = ""
		restConfig.CAData = nil
	}
	if opts.Timeout > 0 {
		restConfig.Timeout = opts.Timeout
	}
	restConfig.UserAgent = "aksupport"
	return restConfig, nil
}
