package cluster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/containerservice/armcontainerservice/v5"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime"
	k8sversion "k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	clienttesting "k8s.io/client-go/testing"

	"go.goms.io/aks/AKSupport/pkg/config"
)

const testResourceID = "/subscriptions/12345678-1234-1234-1234-123456789012/resourceGroups/test-rg/providers/Microsoft.ContainerService/managedClusters/test-cluster"

func TestStaticSource(t *testing.T) {
	v, err := StaticSource("1.24.9").RunningVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.24.9", v)

	_, err = StaticSource("").RunningVersion(context.Background())
	assert.Error(t, err)
}

func TestAPIServerSource_RunningVersion(t *testing.T) {
	fake := &fakediscovery.FakeDiscovery{
		Fake:               &clienttesting.Fake{},
		FakedServerVersion: &k8sversion.Info{GitVersion: "v1.24.9", Platform: "linux/amd64"},
	}
	source := NewAPIServerSourceWithClient(fake, logrus.New())

	v, err := source.RunningVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.24.9", v)
	require.Len(t, fake.Actions(), 1)
	assert.Equal(t, "get", fake.Actions()[0].GetVerb())
}

func TestAPIServerSource_Errors(t *testing.T) {
	failing := &fakediscovery.FakeDiscovery{Fake: &clienttesting.Fake{}}
	failing.PrependReactor("get", "version", func(clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})
	_, err := NewAPIServerSourceWithClient(failing, nil).RunningVersion(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	empty := &fakediscovery.FakeDiscovery{Fake: &clienttesting.Fake{}, FakedServerVersion: &k8sversion.Info{}}
	_, err = NewAPIServerSourceWithClient(empty, nil).RunningVersion(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewAPIServerSourceWithClient(empty, nil).RunningVersion(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: test
  cluster:
    server: https://test-cluster.hcp.westeurope.azmk8s.io:443
users:
- name: test
  user:
    token: kube-token
contexts:
- name: test
  context:
    cluster: test
    user: test
current-context: test
`

func TestBuildRESTConfig_Kubeconfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))

	restConfig, err := buildRESTConfig(APIServerOptions{Kubeconfig: path, Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, "https://test-cluster.hcp.westeurope.azmk8s.io:443", restConfig.Host)
	assert.Equal(t, "kube-token", restConfig.BearerToken)
	assert.Equal(t, 5*time.Second, restConfig.Timeout)
	assert.False(t, restConfig.Insecure)
	assert.Equal(t, "aksupport", restConfig.UserAgent)

	insecure, err := buildRESTConfig(APIServerOptions{Kubeconfig: path, InsecureSkipTLSVerify: true})
	require.NoError(t, err)
	assert.True(t, insecure.Insecure)
	assert.Empty(t, insecure.CAData)
}

func TestBuildRESTConfig_MissingKubeconfig(t *testing.T) {
	_, err := buildRESTConfig(APIServerOptions{Kubeconfig: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

type fakeManagedClusterClient struct {
	resp                armcontainerservice.ManagedClustersClientGetResponse
	err                 error
	resourceGroup, name string
}

func (f *fakeManagedClusterClient) Get(ctx context.Context, resourceGroupName, resourceName string, options *armcontainerservice.ManagedClustersClientGetOptions) (armcontainerservice.ManagedClustersClientGetResponse, error) {
	f.resourceGroup, f.name = resourceGroupName, resourceName
	return f.resp, f.err
}

func managedClusterResponse(props *armcontainerservice.ManagedClusterProperties) armcontainerservice.ManagedClustersClientGetResponse {
	return armcontainerservice.ManagedClustersClientGetResponse{
		ManagedCluster: armcontainerservice.ManagedCluster{Properties: props},
	}
}

func TestManagedClusterSource_RunningVersion(t *testing.T) {
	tests := []struct {
		name    string
		props   *armcontainerservice.ManagedClusterProperties
		err     error
		want    string
		wantErr bool
	}{
		{
			name: "current version preferred",
			props: &armcontainerservice.ManagedClusterProperties{
				KubernetesVersion:        to.StringPtr("1.25"),
				CurrentKubernetesVersion: to.StringPtr("1.25.6"),
			},
			want: "1.25.6",
		},
		{
			name:  "falls back to requested version",
			props: &armcontainerservice.ManagedClusterProperties{KubernetesVersion: to.StringPtr("1.25.6")},
			want:  "1.25.6",
		},
		{
			name:    "no version",
			props:   &armcontainerservice.ManagedClusterProperties{},
			wantErr: true,
		},
		{
			name:    "no properties",
			wantErr: true,
		},
		{
			name:    "sdk error",
			err:     errors.New("ResourceNotFound"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeManagedClusterClient{resp: managedClusterResponse(tt.props), err: tt.err}
			source := NewManagedClusterSourceWithClient(client, "test-rg", "test-cluster", logrus.New())

			got, err := source.RunningVersion(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "test-rg", client.resourceGroup)
			assert.Equal(t, "test-cluster", client.name)
		})
	}
}

type staticCredential struct{}

func (staticCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestNewManagedClusterSource(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()

	source, err := NewManagedClusterSource(testResourceID, staticCredential{}, cfg.GetCloudConfiguration(), nil)
	require.NoError(t, err)
	assert.Equal(t, "test-rg", source.resourceGroup)
	assert.Equal(t, "test-cluster", source.name)

	_, err = NewManagedClusterSource("not-a-resource-id", staticCredential{}, cfg.GetCloudConfiguration(), nil)
	assert.Error(t, err)

	_, err = NewManagedClusterSource(testResourceID, nil, cfg.GetCloudConfiguration(), nil)
	assert.Error(t, err)
}

func TestNewSourceFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()

	source, err := NewSourceFromConfig(cfg, nil, "1.26.0", nil)
	require.NoError(t, err)
	assert.Equal(t, StaticSource("1.26.0"), source)

	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(testKubeconfig), 0o600))
	cfg.Cluster.Kubeconfig = path
	source, err = NewSourceFromConfig(cfg, nil, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &APIServerSource{}, source)

	cfg.Cluster.VersionSource = config.VersionSourceManagedCluster
	cfg.Cluster.ResourceID = testResourceID
	source, err = NewSourceFromConfig(cfg, staticCredential{}, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &ManagedClusterSource{}, source)

	cfg.Cluster.VersionSource = "kubelet"
	_, err = NewSourceFromConfig(cfg, nil, "", nil)
	assert.Error(t, err)
}
