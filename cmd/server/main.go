// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-smsassistent/internal/config"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/ratelimit"
	"github.com/iyunix/go-smsassistent/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger, err := logger.New(logger.Options{
		Service:     "smsassistent",
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		File:        cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	db, err := repository.OpenWithLogger(cfg.DBPath, appLogger)
	if err != nil {
		appLogger.Error("database initialization failed", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	app, err := InitializeApplication(cfg, appLogger, db)
	if err != nil {
		appLogger.Error("application initialization failed", "error", err)
		os.Exit(1)
	}

	if err := app.Settings.SeedGeneral(context.Background(), GeneralFromConfig(cfg)); err != nil {
		appLogger.Warn("could not seed general settings from environment", "error", err)
	}
	if cfg.WebhookSecret == "" {
		appLogger.Warn("WEBHOOK_SECRET is empty; webhook signatures are not checked")
	}

	rl := limiters{
		login:   ratelimit.NewMemoryRateLimiter(ratelimit.LoginConfig()),
		gateway: ratelimit.NewMemoryRateLimiter(ratelimit.GatewayConfig()),
	}
	defer rl.login.Close()
	defer rl.gateway.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           newRouter(app, rl),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.SMSTimeout + 30*time.Second,
	}

	appLogger.Info("server starting",
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
		"database", cfg.DBPath,
	)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	appLogger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server shutdown failed", "error", err)
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLogger.Info("server stopped")
}
