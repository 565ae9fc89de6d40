//go:build wireinject
// +build wireinject

// File: cmd/server/wire.go
package main

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/iyunix/go-smsassistent/internal/config"
	"github.com/iyunix/go-smsassistent/internal/handlers"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/repository/option"
	"github.com/iyunix/go-smsassistent/internal/repository/orderstate"
	"github.com/iyunix/go-smsassistent/internal/repository/sentmessage"
	"github.com/iyunix/go-smsassistent/internal/services/notifier"
	"github.com/iyunix/go-smsassistent/internal/services/settings"
)

func InitializeApplication(cfg *config.Config, log logger.Logger, db *gorm.DB) (*Application, error) {
	wire.Build(
		// Basic providers
		ProvideJWTSecret,
		ProvideAdmin,
		ProvideGatewayTimeout,
		ProvideStore,

		// Repositories
		option.NewOptionRepository,
		sentmessage.NewSentMessageRepository,
		orderstate.NewOrderStateRepository,

		// Services
		settings.NewService,
		notifier.ClientFactory,
		notifier.New,
		wire.Bind(new(notifier.Settings), new(*settings.Service)),

		// Handlers
		handlers.ClientFactory,
		handlers.NewWebhookHandler,
		NewAuthHandlerWrapped,
		handlers.NewSettingsHandler,
		handlers.NewGatewayHandler,
		handlers.NewMessagesHandler,
		handlers.NewHealthHandler,
		wire.Bind(new(handlers.EventNotifier), new(*notifier.Notifier)),
		wire.Bind(new(handlers.TestSender), new(*notifier.Notifier)),
		wire.Bind(new(handlers.StatusRefresher), new(*notifier.Notifier)),
		wire.Bind(new(handlers.GatewayConfigSource), new(*settings.Service)),

		// Application constructor
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
