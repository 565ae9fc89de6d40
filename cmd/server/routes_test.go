package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-smsassistent/internal/config"
	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/middleware"
	"github.com/iyunix/go-smsassistent/internal/ratelimit"
	"github.com/iyunix/go-smsassistent/internal/repository"
)

func newTestServer(t *testing.T) (*httptest.Server, *config.Config) {
	t.Helper()
	hash, err := domain.HashPassword("admin-password")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecretKey:      "router-secret",
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		WebhookSecret:     "hook-secret",
		StoreName:         "Shop",
		SMSTimeout:        time.Second,
	}
	db, err := repository.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)

	app, err := InitializeApplication(cfg, &logger.NoOpLogger{}, db)
	require.NoError(t, err)

	rl := limiters{
		login:   ratelimit.NewMemoryRateLimiter(ratelimit.LoginConfig()),
		gateway: ratelimit.NewMemoryRateLimiter(ratelimit.GatewayConfig()),
	}
	t.Cleanup(rl.login.Close)
	t.Cleanup(rl.gateway.Close)

	srv := httptest.NewServer(newRouter(app, rl))
	t.Cleanup(srv.Close)
	return srv, cfg
}

func do(t *testing.T, method, url, token, body string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouterHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/health", "", "", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouterAdminRequiresLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/admin/settings/general", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/admin/login", "", `{"username":"admin","password":"admin-password"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	require.NotEmpty(t, login.Token)

	resp = do(t, http.MethodGet, srv.URL+"/api/admin/settings/general", login.Token, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/admin/settings/placeholders", login.Token, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/admin/gateway/balance", login.Token, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "gateway is not configured yet")
}

func TestRouterLoginIsRateLimited(t *testing.T) {
	srv, _ := newTestServer(t)
	limit := ratelimit.LoginConfig().MaxAttempts

	for i := 0; i < limit; i++ {
		resp := do(t, http.MethodPost, srv.URL+"/api/admin/login", "", `{"username":"admin","password":"nope-nope"}`, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := do(t, http.MethodPost, srv.URL+"/api/admin/login", "", `{"username":"admin","password":"admin-password"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRouterWebhookSignature(t *testing.T) {
	srv, cfg := newTestServer(t)
	body := "webhook_id=9"

	resp := do(t, http.MethodPost, srv.URL+"/webhooks/woocommerce/order", "", body, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/webhooks/woocommerce/order", "", body, map[string]string{
		"X-WC-Webhook-Signature": middleware.WooSignatureFor(cfg.WebhookSecret, []byte(body)),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	order := `{"id":501,"status":"processing"}`
	resp = do(t, http.MethodPost, srv.URL+"/webhooks/woocommerce/order", "", order, map[string]string{
		"X-WC-Webhook-Signature": middleware.WooSignatureFor(cfg.WebhookSecret, []byte(order)),
		"X-WC-Webhook-Topic":     "order.updated",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/nope", "", "", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGeneralFromConfig(t *testing.T) {
	opts := GeneralFromConfig(&config.Config{SMSLogin: "user", SMSPassword: "pass", SMSMode: "xml"})
	assert.True(t, opts.Active)
	assert.Equal(t, "xml", opts.Mode)

	assert.False(t, GeneralFromConfig(&config.Config{}).Active)
}
