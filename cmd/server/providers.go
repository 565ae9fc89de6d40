// File: cmd/server/providers.go
package main

import (
	"github.com/iyunix/go-smsassistent/internal/config"
	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/handlers"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/services/notifier"
	"github.com/iyunix/go-smsassistent/internal/services/settings"
	"github.com/iyunix/go-smsassistent/internal/services/template"
)

// Application aggregates all services and handlers
type Application struct {
	Config          *config.Config
	Logger          logger.Logger
	Settings        *settings.Service
	Notifier        *notifier.Notifier
	WebhookHandler  *handlers.WebhookHandler
	AuthHandler     *handlers.AuthHandler
	SettingsHandler *handlers.SettingsHandler
	GatewayHandler  *handlers.GatewayHandler
	MessagesHandler *handlers.MessagesHandler
	HealthHandler   *handlers.HealthHandler
}

// Wrapper types to avoid []byte/string ambiguity
type JWTSecret []byte

func ProvideJWTSecret(cfg *config.Config) JWTSecret {
	return JWTSecret(cfg.JWTSecretKey)
}

func ProvideAdmin(cfg *config.Config) *domain.Admin {
	return &domain.Admin{
		ID:           domain.AdminID,
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
	}
}

func ProvideGatewayTimeout(cfg *config.Config) settings.GatewayTimeout {
	return settings.GatewayTimeout(cfg.SMSTimeout)
}

func ProvideStore(cfg *config.Config) template.Store {
	return template.Store{Name: cfg.StoreName, URL: cfg.StoreURL}
}

func NewAuthHandlerWrapped(admin *domain.Admin, secret JWTSecret, log logger.Logger) *handlers.AuthHandler {
	return handlers.NewAuthHandler(admin, []byte(secret), log)
}

// GeneralFromConfig maps the SMS_* variables onto the general option group
// used to seed a fresh database.
func GeneralFromConfig(cfg *config.Config) domain.GeneralOptions {
	return domain.GeneralOptions{
		Active:        cfg.SMSLogin != "",
		Username:      cfg.SMSLogin,
		Password:      cfg.SMSPassword,
		Token:         cfg.SMSToken,
		Sender:        cfg.SMSSender,
		BaseURL:       cfg.SMSBaseURL,
		Mode:          cfg.SMSMode,
		WebhookURL:    cfg.SMSWebhookURL,
		SubscribeName: cfg.SMSSubscribeName,
	}
}
