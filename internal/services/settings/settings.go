// Package settings reads and writes the option groups that drive notifications.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/repository/option"
	"github.com/iyunix/go-smsassistent/internal/services/sms"
)

// GatewayTimeout is the per-request timeout handed to gateway clients.
type GatewayTimeout time.Duration

var (
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrGatewayDisabled = errors.New("gateway credentials are not configured")

	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	statusPattern = regexp.MustCompile(`^[a-z0-9_-]{1,40}$`)
	phonePattern  = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{4,19}$`)
)

// ValidationError wraps field errors reported by the validator.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := lo.Keys(e.Fields)
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid settings: " + strings.Join(parts, "; ")
}

type Service struct {
	repo     option.OptionRepository
	logger   logger.Logger
	validate *validator.Validate
	timeout  time.Duration
}

func NewService(repo option.OptionRepository, log logger.Logger, timeout GatewayTimeout) *Service {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("phonelist", func(fl validator.FieldLevel) bool {
		return lo.EveryBy(SplitPhones(fl.Field().String()), phonePattern.MatchString)
	})
	return &Service{repo: repo, logger: log, validate: v, timeout: time.Duration(timeout)}
}

// General returns the general group merged over its defaults.
func (s *Service) General(ctx context.Context) (domain.GeneralOptions, error) {
	opts := domain.GeneralOptions{Mode: string(sms.ModeJSON)}
	err := s.load(ctx, domain.OptionGeneral, &opts)
	return opts, err
}

func (s *Service) SaveGeneral(ctx context.Context, opts domain.GeneralOptions) (domain.GeneralOptions, error) {
	opts = sanitizeGeneral(opts)
	if err := s.check(opts); err != nil {
		return opts, err
	}
	return opts, s.store(ctx, domain.OptionGeneral, opts)
}

// SeedGeneral writes opts as the general group unless one is stored already.
func (s *Service) SeedGeneral(ctx context.Context, opts domain.GeneralOptions) error {
	opts = sanitizeGeneral(opts)
	if err := s.check(opts); err != nil {
		return err
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	written, err := s.repo.Seed(ctx, domain.OptionGeneral, string(raw))
	if err != nil {
		return err
	}
	if written {
		s.logger.Info("general settings seeded from environment", "active", opts.Active, "mode", opts.Mode)
	}
	return nil
}

// StatusOptions returns the notification group of an order status.
func (s *Service) StatusOptions(ctx context.Context, status string) (domain.NotificationOptions, error) {
	slug, err := NormalizeStatus(status)
	if err != nil {
		return domain.NotificationOptions{}, err
	}
	return s.notification(ctx, domain.StatusOptionName(slug))
}

func (s *Service) SaveStatusOptions(ctx context.Context, status string, opts domain.NotificationOptions) (domain.NotificationOptions, error) {
	slug, err := NormalizeStatus(status)
	if err != nil {
		return opts, err
	}
	return s.saveNotification(ctx, domain.StatusOptionName(slug), opts)
}

func (s *Service) CustomerOptions(ctx context.Context) (domain.NotificationOptions, error) {
	return s.notification(ctx, domain.OptionNewCustomer)
}

func (s *Service) SaveCustomerOptions(ctx context.Context, opts domain.NotificationOptions) (domain.NotificationOptions, error) {
	return s.saveNotification(ctx, domain.OptionNewCustomer, opts)
}

// ClientConfig builds gateway client configuration from the general group.
func (s *Service) ClientConfig(ctx context.Context) (*sms.Config, domain.GeneralOptions, error) {
	general, err := s.General(ctx)
	if err != nil {
		return nil, general, err
	}
	cfg := ConfigFromGeneral(general, s.timeout)
	if err := cfg.Validate(); err != nil {
		return nil, general, fmt.Errorf("%w: %v", ErrGatewayDisabled, err)
	}
	return cfg, general, nil
}

// ConfigFromGeneral maps the general group onto a gateway client config.
func ConfigFromGeneral(general domain.GeneralOptions, timeout time.Duration) *sms.Config {
	cfg := sms.DefaultConfig()
	cfg.Credentials = sms.Credentials{
		Login:    general.Username,
		Password: general.Password,
		Token:    general.Token,
	}
	if general.BaseURL != "" {
		cfg.BaseURL = general.BaseURL
	}
	cfg.Mode = sms.ParseMode(general.Mode)
	cfg.WebhookURL = general.WebhookURL
	cfg.SubscribeName = general.SubscribeName
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return cfg
}

func (s *Service) notification(ctx context.Context, name string) (domain.NotificationOptions, error) {
	var opts domain.NotificationOptions
	err := s.load(ctx, name, &opts)
	return opts, err
}

func (s *Service) saveNotification(ctx context.Context, name string, opts domain.NotificationOptions) (domain.NotificationOptions, error) {
	opts = sanitizeNotification(opts)
	if err := s.check(opts); err != nil {
		return opts, err
	}
	return opts, s.store(ctx, name, opts)
}

// load decodes the stored group over the defaults already in dst.
func (s *Service) load(ctx context.Context, name string, dst any) error {
	opt, err := s.repo.Get(ctx, name)
	if errors.Is(err, option.ErrOptionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(opt.Value), dst); err != nil {
		s.logger.Warn("stored option is not valid JSON, using defaults", "option", name, "error", err)
		return nil
	}
	return nil
}

func (s *Service) store(ctx context.Context, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, name, string(raw)); err != nil {
		return err
	}
	s.logger.Info("settings saved", "option", name)
	return nil
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = "failed " + fe.Tag()
	}
	return out
}

// NormalizeStatus turns "wc-Processing " into "processing".
func NormalizeStatus(status string) (string, error) {
	slug := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(status)), "wc-")
	if !statusPattern.MatchString(slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return slug, nil
}

// SplitPhones splits a semicolon separated phone list and drops blanks.
func SplitPhones(list string) []string {
	return lo.Compact(lo.Map(strings.Split(list, ";"), func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}

// sanitizeText strips tags and line breaks from a single line value.
func sanitizeText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeTextarea strips tags but keeps line breaks.
func sanitizeTextarea(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func sanitizeGeneral(o domain.GeneralOptions) domain.GeneralOptions {
	o.Username = sanitizeText(o.Username)
	o.Password = strings.TrimSpace(o.Password)
	o.Token = sanitizeText(o.Token)
	o.Sender = sanitizeText(o.Sender)
	o.BaseURL = sanitizeText(o.BaseURL)
	o.Mode = strings.ToLower(sanitizeText(o.Mode))
	o.WebhookURL = sanitizeText(o.WebhookURL)
	o.SubscribeName = sanitizeText(o.SubscribeName)
	return o
}

func sanitizeNotification(o domain.NotificationOptions) domain.NotificationOptions {
	o.CustomerTemplate = sanitizeTextarea(o.CustomerTemplate)
	o.ManagerTemplate = sanitizeTextarea(o.ManagerTemplate)
	o.ManagerPhones = strings.Join(SplitPhones(sanitizeText(o.ManagerPhones)), ";")
	return o
}
