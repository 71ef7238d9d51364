package cluster

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/containerservice/armcontainerservice/v5"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/sirupsen/logrus"

	"go.goms.io/aks/AKSupport/pkg/config"
)

// ManagedClusterClient is the subset of the Azure SDK managed clusters client we need.
// It exists to allow lightweight mocking in unit tests.
type ManagedClusterClient interface {
	Get(ctx context.Context, resourceGroupName, resourceName string, options *armcontainerservice.ManagedClustersClientGetOptions) (armcontainerservice.ManagedClustersClientGetResponse, error)
}

// ManagedClusterSource reads currentKubernetesVersion from the AKS resource in Azure Resource Manager.
type ManagedClusterSource struct {
	client        ManagedClusterClient
	resourceGroup string
	name          string
	logger        *logrus.Logger
}

// NewManagedClusterSource creates a source for the cluster identified by resourceID.
func NewManagedClusterSource(resourceID string, cred azcore.TokenCredential, cloudConfig cloud.Configuration, logger *logrus.Logger) (*ManagedClusterSource, error) {
	matches := config.AKSClusterResourceIDPattern.FindStringSubmatch(resourceID)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid AKS cluster resource ID %q", resourceID)
	}
	if cred == nil {
		return nil, fmt.Errorf("a credential is required to read the managed cluster")
	}

	client, err := armcontainerservice.NewManagedClustersClient(matches[1], cred, &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{Cloud: cloudConfig},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create managed clusters client: %w", err)
	}
	return NewManagedClusterSourceWithClient(client, matches[2], matches[3], logger), nil
}

// NewManagedClusterSourceWithClient allows injecting a ManagedClusterClient (primarily for tests).
func NewManagedClusterSourceWithClient(client ManagedClusterClient, resourceGroup, name string, logger *logrus.Logger) *ManagedClusterSource {
	if logger == nil {
		logger = logrus.New()
	}
	return &ManagedClusterSource{client: client, resourceGroup: resourceGroup, name: name, logger: logger}
}

// RunningVersion implements VersionSource. currentKubernetesVersion is preferred;
// kubernetesVersion is the requested version and only used when the current one is missing.
func (s *ManagedClusterSource) RunningVersion(ctx context.Context) (string, error) {
	s.logger.Infof("Reading Kubernetes version of managed cluster %s/%s", s.resourceGroup, s.name)
	resp, err := s.client.Get(ctx, s.resourceGroup, s.name, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get AKS managed cluster via SDK: %w", err)
	}

	props := resp.ManagedCluster.Properties
	if props == nil {
		return "", fmt.Errorf("managed cluster %s has no properties", s.name)
	}
	if current := to.String(props.CurrentKubernetesVersion); current != "" {
		return current, nil
	}
	if requested := to.String(props.KubernetesVersion); requested != "" {
		s.logger.Warnf("Managed cluster %s has no currentKubernetesVersion, using kubernetesVersion %s", s.name, requested)
		return requested, nil
	}
	return "", fmt.Errorf("managed cluster %s reports no Kubernetes version", s.name)
}
