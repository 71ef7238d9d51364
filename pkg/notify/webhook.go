package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.goms.io/aks/AKSupport/pkg/utils"
)

const (
	webhookChannelName = "teams-webhook"

	// webhookAck is the body Teams incoming webhooks answer with on success.
	webhookAck = "1"

	messageCardThemeColor = "0078D7"
)

// messageCard is the legacy Office 365 connector card accepted by Teams incoming webhooks.
type messageCard struct {
	Type            string          `json:"@type"`
	Context         string          `json:"@context"`
	ThemeColor      string          `json:"themeColor"`
	Summary         string          `json:"summary"`
	Title           string          `json:"title"`
	Sections        []cardSection   `json:"sections"`
	PotentialAction []openURIAction `json:"potentialAction"`
}

type cardSection struct {
	ActivityTitle    string     `json:"activityTitle"`
	ActivitySubtitle string     `json:"activitySubtitle"`
	ActivityImage    string     `json:"activityImage,omitempty"`
	Facts            []cardFact `json:"facts"`
	Text             string     `json:"text"`
}

type cardFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type openURIAction struct {
	Type    string      `json:"@type"`
	Name    string      `json:"name"`
	Targets []uriTarget `json:"targets"`
}

type uriTarget struct {
	OS  string `json:"os"`
	URI string `json:"uri"`
}

// WebhookChannel posts a MessageCard to a Teams incoming webhook.
type WebhookChannel struct {
	url      string
	imageURL string
	client   *http.Client
}

// NewWebhookChannel creates a channel for the given webhook URL. imageURL is optional.
func NewWebhookChannel(url, imageURL string, client *http.Client) *WebhookChannel {
	if client == nil {
		client = utils.NewHTTPClient(utils.DefaultHTTPTimeout)
	}
	return &WebhookChannel{url: url, imageURL: imageURL, client: client}
}

// Name implements Channel.
func (w *WebhookChannel) Name() string {
	return webhookChannelName
}

// Send implements Channel. It returns true only when Teams answers with its acknowledgement body.
func (w *WebhookChannel) Send(ctx context.Context, event Event) (bool, error) {
	payload, err := json.Marshal(w.buildCard(event))
	if err != nil {
		return false, fmt.Errorf("failed to encode message card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := utils.ReadBody(resp)
	if err != nil {
		return false, fmt.Errorf("failed to read webhook response: %w", err)
	}
	if !utils.IsSuccess(resp) {
		return false, &DeliveryError{Channel: webhookChannelName, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return string(body) == webhookAck, nil
}

func (w *WebhookChannel) buildCard(event Event) messageCard {
	actions := make([]openURIAction, 0, 3)
	if event.ClusterURL != "" {
		actions = append(actions, newOpenURIAction("View AKS Cluster", event.ClusterURL))
	}
	actions = append(actions,
		newOpenURIAction("Version Support Policy", PolicyURL),
		newOpenURIAction("AKSupport on GitHub", ProjectURL),
	)

	return messageCard{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: messageCardThemeColor,
		Summary:    "AKSupport Alert",
		Title:      AlertTitle,
		Sections: []cardSection{{
			ActivityTitle:    "Automated Alert",
			ActivitySubtitle: event.FormattedTimestamp(),
			ActivityImage:    w.imageURL,
			Facts: []cardFact{
				{Name: "Cluster:", Value: event.ClusterName},
				{Name: "Running:", Value: event.RunningVersion},
				{Name: "Status:", Value: event.Status.String()},
			},
			Text: event.Description,
		}},
		PotentialAction: actions,
	}
}

func newOpenURIAction(name, uri string) openURIAction {
	return openURIAction{
		Type:    "OpenUri",
		Name:    name,
		Targets: []uriTarget{{OS: "default", URI: uri}},
	}
}
