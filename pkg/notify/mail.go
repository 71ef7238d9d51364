package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.goms.io/aks/AKSupport/pkg/auth"
	"go.goms.io/aks/AKSupport/pkg/utils"
)

const (
	mailChannelName = "office365-mail"

	// DefaultGraphURL is the Microsoft Graph endpoint of the public cloud.
	DefaultGraphURL = "https://graph.microsoft.com"
)

type email struct {
	Message         mailMessage `json:"message"`
	SaveToSentItems string      `json:"saveToSentItems"`
}

type mailMessage struct {
	Subject      string      `json:"subject"`
	Body         mailBody    `json:"body"`
	ToRecipients []recipient `json:"toRecipients"`
}

type mailBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
}

// MailSettings configures a MailChannel.
type MailSettings struct {
	Credential       auth.Credential
	GraphURL         string
	SenderID         string
	RecipientAddress string
	ImageURL         string
}

// MailChannel sends an Adaptive Card mail through Microsoft Graph with its own app registration.
type MailChannel struct {
	caller    *auth.AuthorizedCaller
	graphURL  string
	senderID  string
	recipient string
	imageURL  string
}

// NewMailChannel creates a mail channel owning a token cache for settings.Credential.
func NewMailChannel(settings MailSettings, client *http.Client) *MailChannel {
	if client == nil {
		client = utils.NewHTTPClient(utils.DefaultHTTPTimeout)
	}
	graphURL := strings.TrimSuffix(settings.GraphURL, "/")
	if graphURL == "" {
		graphURL = DefaultGraphURL
	}

	tokens := auth.NewTokenCache(settings.Credential, client)
	return &MailChannel{
		caller:    auth.NewAuthorizedCaller(client, tokens, graphURL+"/.default"),
		graphURL:  graphURL,
		senderID:  settings.SenderID,
		recipient: settings.RecipientAddress,
		imageURL:  settings.ImageURL,
	}
}

// Name implements Channel.
func (m *MailChannel) Name() string {
	return mailChannelName
}

// Send implements Channel. Graph answers 202 Accepted with an empty body, so any 2xx is an acknowledgement.
func (m *MailChannel) Send(ctx context.Context, event Event) (bool, error) {
	content, err := renderAdaptiveCard(event, m.imageURL)
	if err != nil {
		return false, err
	}

	payload, err := json.Marshal(email{
		Message: mailMessage{
			Subject: AlertTitle,
			Body: mailBody{
				ContentType: "HTML",
				Content:     content,
			},
			ToRecipients: []recipient{{EmailAddress: emailAddress{Address: m.recipient}}},
		},
		SaveToSentItems: "false",
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode mail: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1.0/users/%s/sendMail", m.graphURL, url.PathEscape(m.senderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to create sendMail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.caller.Do(req)
	if err != nil {
		return false, fmt.Errorf("sendMail request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := utils.ReadBody(resp)
	if err != nil {
		return false, fmt.Errorf("failed to read sendMail response: %w", err)
	}
	if !utils.IsSuccess(resp) {
		return false, &DeliveryError{Channel: mailChannelName, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return true, nil
}
