package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"go.goms.io/aks/AKSupport/pkg/auth"
	"go.goms.io/aks/AKSupport/pkg/utils"
	"go.goms.io/aks/AKSupport/pkg/version"
)

const (
	// APIVersion of the Microsoft.ContainerService orchestrators endpoint.
	APIVersion = "2019-08-01"

	// DefaultBaseURL is the Azure Resource Manager endpoint of the public cloud.
	DefaultBaseURL = "https://management.azure.com"
)

// Client fetches the list of AKS supported Kubernetes versions for a region.
type Client struct {
	caller  *auth.AuthorizedCaller
	baseURL string
	logger  *logrus.Logger
}

// NewClient creates a catalog client. An empty baseURL selects DefaultBaseURL.
func NewClient(caller *auth.AuthorizedCaller, baseURL string, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		caller:  caller,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// FetchSupportedVersions returns the supported orchestrator versions of a region in
// provider order. A response without an orchestrators list yields an empty catalog.
func (c *Client) FetchSupportedVersions(ctx context.Context, subscriptionID, region string) (Catalog, error) {
	endpoint := fmt.Sprintf("%s/subscriptions/%s/providers/Microsoft.ContainerService/locations/%s/orchestrators?%s",
		c.baseURL, url.PathEscape(subscriptionID), url.PathEscape(region),
		url.Values{"api-version": {APIVersion}, "resource-type": {"managedClusters"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build orchestrators request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-ms-client-request-id", requestID)

	c.logger.Debugf("Fetching supported AKS versions for region %s (request id %s)", region, requestID)
	resp, err := c.caller.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call orchestrators endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := utils.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read orchestrators response: %w", err)
	}
	if !utils.IsSuccess(resp) {
		return nil, &UpstreamError{URL: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	catalog, err := Parse(body)
	if err != nil {
		return nil, err
	}
	c.logger.Infof("Region %s supports %d AKS versions: %s", region, len(catalog), strings.Join(catalog.Versions(), ", "))
	return catalog, nil
}

// Parse normalizes an orchestrators response body. Some regions nest the list
// under properties.orchestrators, others return it at the top level.
func Parse(body []byte) (Catalog, error) {
	if !gjson.ValidBytes(body) {
		return nil, &MalformedResponseError{Reason: "body is not valid JSON"}
	}

	list := gjson.GetBytes(body, "properties.orchestrators")
	if !list.Exists() || list.Type == gjson.Null {
		list = gjson.GetBytes(body, "orchestrators")
	}
	if !list.Exists() || list.Type == gjson.Null {
		return Catalog{}, nil
	}
	if !list.IsArray() {
		return nil, &MalformedResponseError{Reason: "orchestrators is not an array"}
	}

	var raw []orchestrator
	if err := json.Unmarshal([]byte(list.Raw), &raw); err != nil {
		return nil, &MalformedResponseError{Reason: "cannot decode orchestrators", Err: err}
	}

	catalog := make(Catalog, 0, len(raw))
	for _, o := range raw {
		v, err := version.Parse(o.OrchestratorVersion)
		if err != nil {
			return nil, &MalformedResponseError{Reason: "invalid orchestratorVersion", Err: err}
		}
		entry := Entry{Version: v, IsDefault: o.Default, IsPreview: o.IsPreview}
		for _, u := range o.Upgrades {
			uv, err := version.Parse(u.OrchestratorVersion)
			if err != nil {
				return nil, &MalformedResponseError{Reason: "invalid upgrade orchestratorVersion", Err: err}
			}
			entry.Upgrades = append(entry.Upgrades, Upgrade{Version: uv, IsPreview: u.IsPreview})
		}
		catalog = append(catalog, entry)
	}
	return catalog, nil
}
