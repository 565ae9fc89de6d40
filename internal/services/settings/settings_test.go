package settings

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/repository"
	"github.com/iyunix/go-smsassistent/internal/repository/option"
	"github.com/iyunix/go-smsassistent/internal/services/sms"
)

func newTestService(t *testing.T) (*Service, option.OptionRepository) {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	repo := option.NewOptionRepository(db)
	return NewService(repo, &logger.NoOpLogger{}, GatewayTimeout(30*time.Second)), repo
}

func TestGeneralDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	general, err := svc.General(context.Background())
	require.NoError(t, err)
	assert.False(t, general.Active)
	assert.Equal(t, "json", general.Mode)
}

func TestSaveGeneralSanitizesAndValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveGeneral(ctx, domain.GeneralOptions{
		Active:   true,
		Username: "  <b>shop</b>\n",
		Password: " secret ",
		Sender:   "Shop",
		Mode:     "XML",
	})
	require.NoError(t, err)
	assert.Equal(t, "shop", saved.Username)
	assert.Equal(t, "secret", saved.Password)
	assert.Equal(t, "xml", saved.Mode)

	loaded, err := svc.General(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	_, err = svc.SaveGeneral(ctx, domain.GeneralOptions{Mode: "soap", BaseURL: "not a url"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Mode")
	assert.Contains(t, verr.Fields, "BaseURL")
}

func TestStoredValuesMergeOverDefaults(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, domain.OptionGeneral, `{"active":true}`))

	general, err := svc.General(ctx)
	require.NoError(t, err)
	assert.True(t, general.Active)
	assert.Equal(t, "json", general.Mode)
}

func TestCorruptOptionFallsBackToDefaults(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, domain.OptionNewCustomer, `{oops`))

	opts, err := svc.CustomerOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationOptions{}, opts)
}

func TestStatusOptions(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveStatusOptions(ctx, "wc-Processing", domain.NotificationOptions{
		CustomerActive:   true,
		CustomerTemplate: "Order {order_id}\r\nis <i>processing</i>  ",
		ManagerActive:    true,
		ManagerPhones:    " +375291111111 ; ;+375292222222;",
		ManagerTemplate:  "New order {order_id}",
	})
	require.NoError(t, err)
	assert.Equal(t, "Order {order_id}\nis processing", saved.CustomerTemplate)
	assert.Equal(t, "+375291111111;+375292222222", saved.ManagerPhones)

	stored, err := repo.Get(ctx, "new_status_wc-processing")
	require.NoError(t, err)
	assert.Contains(t, stored.Value, `"manager_active":true`)

	loaded, err := svc.StatusOptions(ctx, "processing")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	_, err = svc.StatusOptions(ctx, "../etc")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.SaveStatusOptions(ctx, "completed", domain.NotificationOptions{ManagerPhones: "call me"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "ManagerPhones")
}

func TestSeedGeneralOnlyOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedGeneral(ctx, domain.GeneralOptions{Active: true, Username: "env", Password: "p", Mode: "json"}))
	_, err := svc.SaveGeneral(ctx, domain.GeneralOptions{Username: "admin", Password: "p2", Mode: "xml"})
	require.NoError(t, err)
	require.NoError(t, svc.SeedGeneral(ctx, domain.GeneralOptions{Username: "env"}))

	general, err := svc.General(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", general.Username)
}

func TestClientConfig(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.ClientConfig(ctx)
	assert.ErrorIs(t, err, ErrGatewayDisabled)

	_, err = svc.SaveGeneral(ctx, domain.GeneralOptions{
		Username:   "shop",
		Token:      "tok",
		Mode:       "xml",
		BaseURL:    "https://gw.example/",
		WebhookURL: "https://shop.example/sms",
	})
	require.NoError(t, err)

	cfg, general, err := svc.ClientConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shop", general.Username)
	assert.Equal(t, sms.Credentials{Login: "shop", Token: "tok"}, cfg.Credentials)
	assert.Equal(t, sms.ModeXML, cfg.Mode)
	assert.Equal(t, "https://gw.example/", cfg.BaseURL)
	assert.Equal(t, "https://shop.example/sms", cfg.WebhookURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestConfigFromGeneralDefaults(t *testing.T) {
	cfg := ConfigFromGeneral(domain.GeneralOptions{Username: "u", Password: "p"}, 0)
	assert.Equal(t, sms.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, sms.ModeJSON, cfg.Mode)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
}

func TestSplitPhones(t *testing.T) {
	assert.Equal(t, []string{"+1", "+2"}, SplitPhones(" +1;;+2 ; "))
	assert.Empty(t, SplitPhones(""))
}

func TestNormalizeStatus(t *testing.T) {
	got, err := NormalizeStatus(" WC-On-Hold ")
	require.NoError(t, err)
	assert.Equal(t, "on-hold", got)

	_, err = NormalizeStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
