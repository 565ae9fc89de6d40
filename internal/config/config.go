// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	DBPath      string `envconfig:"DB_PATH" default:"smsassistent.db"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFile     string `envconfig:"LOG_FILE"`

	JWTSecretKey      string `envconfig:"JWT_SECRET_KEY"`
	AdminUsername     string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`
	// Shared secret configured on the WooCommerce webhooks. Empty disables signature checks.
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`

	StoreName string `envconfig:"STORE_NAME"`
	StoreURL  string `envconfig:"STORE_URL"`

	// Gateway settings; they seed the general option group on first start.
	SMSLogin         string        `envconfig:"SMS_LOGIN"`
	SMSPassword      string        `envconfig:"SMS_PASSWORD"`
	SMSToken         string        `envconfig:"SMS_TOKEN"`
	SMSSender        string        `envconfig:"SMS_SENDER"`
	SMSBaseURL       string        `envconfig:"SMS_BASE_URL" default:"https://userarea.sms-assistent.by/"`
	SMSMode          string        `envconfig:"SMS_MODE" default:"json"`
	SMSWebhookURL    string        `envconfig:"SMS_WEBHOOK_URL"`
	SMSSubscribeName string        `envconfig:"SMS_SUBSCRIBE_NAME"`
	SMSTimeout       time.Duration `envconfig:"SMS_TIMEOUT" default:"120s"`
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	if !isProduction(os.Getenv("ENV")) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	var cfg Config
	// Empty prefix so the tags above are the literal variable names.
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the variables a production deployment cannot run without.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	missing := []string{}
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if c.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD_HASH")
	}
	if c.SMSLogin == "" {
		missing = append(missing, "SMS_LOGIN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required production environment variables: %v", missing)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func isProduction(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "production")
}
