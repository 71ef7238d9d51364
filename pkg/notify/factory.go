package notify

import (
	"github.com/sirupsen/logrus"

	"go.goms.io/aks/AKSupport/pkg/auth"
	"go.goms.io/aks/AKSupport/pkg/config"
	"go.goms.io/aks/AKSupport/pkg/utils"
)

// ChannelsFromConfig builds every fully configured channel. A partially configured
// channel is skipped with a warning.
func ChannelsFromConfig(cfg *config.Config, logger *logrus.Logger) []Channel {
	if logger == nil {
		logger = logrus.New()
	}
	client := utils.NewHTTPClient(cfg.GetHTTPTimeout())

	var channels []Channel
	if cfg.IsWebhookConfigured() {
		channels = append(channels, NewWebhookChannel(cfg.Notifications.Webhook.URL, cfg.Notifications.ImageURL, client))
		logger.Debugf("Registered notification channel %s", webhookChannelName)
	}

	mail := cfg.Notifications.Mail
	switch {
	case cfg.IsMailConfigured():
		channels = append(channels, NewMailChannel(MailSettings{
			Credential: auth.Credential{
				Authority:    cfg.GetAuthorityHost(),
				TenantID:     mail.TenantID,
				ClientID:     mail.ClientID,
				ClientSecret: mail.ClientSecret,
				Legacy:       cfg.Azure.LegacyTokenEndpoint,
			},
			GraphURL:         cfg.GetGraphEndpoint(),
			SenderID:         mail.SenderID,
			RecipientAddress: mail.RecipientAddress,
			ImageURL:         cfg.Notifications.ImageURL,
		}, client))
		logger.Debugf("Registered notification channel %s", mailChannelName)
	case cfg.IsMailPartiallyConfigured():
		logger.Warn("Mail notification settings are incomplete, mail channel disabled")
	}

	return channels
}

// NewDispatcherFromConfig returns a dispatcher with every configured channel registered.
func NewDispatcherFromConfig(cfg *config.Config, logger *logrus.Logger) *Dispatcher {
	d := NewDispatcher(logger)
	d.FailFast = cfg.Notifications.FailFast
	for _, ch := range ChannelsFromConfig(cfg, logger) {
		d.RegisterChannel(ch)
	}
	return d
}
