package notification

import (
	"context"
	"time"

	"agrirent-backend/internal/config"
	"agrirent-backend/internal/logger"
)

// BuildNotifiers returns the channels that are configured; each one is optional.
func BuildNotifiers(ctx context.Context, cfg *config.Config) []Notifier {
	var notifiers []Notifier

	if cfg.SendGrid.APIKey != "" {
		notifiers = append(notifiers, NewSendGridNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, cfg.SendGrid.OpsEmail))
		logger.Info("Email notifications enabled", "from", cfg.SendGrid.FromEmail)
	}
	if cfg.Twilio.AccountSID != "" {
		notifiers = append(notifiers, NewTwilioNotifier(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber))
		logger.Info("SMS notifications enabled", "from", cfg.Twilio.FromNumber)
	}
	if cfg.Firebase.CredentialsFile != "" {
		push, err := NewPushNotifier(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			logger.Error("Push notifications disabled", "error", err)
		} else {
			notifiers = append(notifiers, push)
			logger.Info("Push notifications enabled")
		}
	}
	if cfg.MQTT.Broker != "" {
		pub, err := NewMQTTPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS,
			time.Duration(cfg.MQTT.ConnectTimeoutSeconds)*time.Second)
		if err != nil {
			logger.Error("Telematics publishing disabled", "error", err)
		} else {
			notifiers = append(notifiers, pub)
			logger.Info("Telematics publishing enabled", "broker", cfg.MQTT.Broker)
		}
	}

	if len(notifiers) == 0 {
		logger.Warn("No notification channels configured")
	}
	return notifiers
}
