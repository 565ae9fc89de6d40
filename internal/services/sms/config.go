package sms

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public SMS-assistent endpoint.
const DefaultBaseURL = "https://userarea.sms-assistent.by/"

// DefaultValidityPeriod is the message lifetime in hours used when none is given.
const DefaultValidityPeriod = 48

// Mode selects the wire format used for multi-recipient operations.
type Mode string

const (
	ModeJSON Mode = "json"
	ModeXML  Mode = "xml"
)

// ParseMode maps "xml" to ModeXML and everything else to ModeJSON.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeXML)) {
		return ModeXML
	}
	return ModeJSON
}

// Credentials is the gateway credential triple. A non-empty Token replaces
// the password on the wire.
type Credentials struct {
	Login    string
	Password string
	Token    string
}

type Config struct {
	Credentials

	BaseURL       string
	Mode          Mode
	WebhookURL    string
	SubscribeName string
	Timeout       time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Mode:    ModeJSON,
		Timeout: 120 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Login == "" {
		return errors.New("gateway login is required")
	}
	if c.Password == "" && c.Token == "" {
		return errors.New("gateway password or token is required")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("gateway base URL is invalid")
		}
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	return nil
}

// endpoint joins the base URL and an API path, tolerating a missing trailing slash.
func (c *Config) endpoint(path string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(path, "/")
}
