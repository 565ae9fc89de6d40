package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-smsassistent/internal/auth"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/ratelimit"
)

var noop = &logger.NoOpLogger{}

func echoBody() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})
}

func TestWooSignature(t *testing.T) {
	const secret = "s3cret"
	body := `{"id":1,"status":"processing"}`
	h := WooSignature(secret, noop)(echoBody())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/woocommerce/order", strings.NewReader(body))
	req.Header.Set("X-WC-Webhook-Signature", WooSignatureFor(secret, []byte(body)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String(), "body must be readable downstream")

	req = httptest.NewRequest(http.MethodPost, "/webhooks/woocommerce/order", strings.NewReader(body))
	req.Header.Set("X-WC-Webhook-Signature", WooSignatureFor("other", []byte(body)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhooks/woocommerce/order", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Only WooCommerce's header name is accepted.
	req = httptest.NewRequest(http.MethodPost, "/webhooks/woocommerce/order", strings.NewReader(body))
	req.Header.Set("X-WC-Signature", WooSignatureFor(secret, []byte(body)))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWooSignatureDisabledWithoutSecret(t *testing.T) {
	h := WooSignature("", noop)(echoBody())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/woocommerce/order", strings.NewReader("webhook_id=3"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "webhook_id=3", rec.Body.String())
}

func TestWooSignatureForKnownValue(t *testing.T) {
	// echo -n 'payload' | openssl dgst -sha256 -hmac key -binary | base64
	assert.Equal(t, "XZi0XJCiB/qZjOY5/qbwLsyMw/Nv74HWlPuFa00KKMo=", WooSignatureFor("key", []byte("payload")))
	assert.False(t, ValidWooSignature("key", []byte("payload"), ""))
}

func TestRequireAdmin(t *testing.T) {
	secret := []byte("jwt-secret")
	var seen uint
	h := RequireAdmin(secret, noop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(AdminIDKey).(uint)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := auth.GenerateJWT(1, secret, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint(1), seen)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize:    time.Minute,
		MaxAttempts:   2,
		CleanupPeriod: time.Hour,
		BanDuration:   time.Minute,
	})
	defer limiter.Close()

	status := http.StatusUnauthorized
	h := RateLimitMiddleware(limiter, "login", noop)(
		AuthSuccessMiddleware(limiter, "login", noop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})),
	)
	hit := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", nil))
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, hit().Code)
	rec := hit()
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = hit()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["banned"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestAuthSuccessResetsAttempts(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize:    time.Minute,
		MaxAttempts:   2,
		CleanupPeriod: time.Hour,
		BanDuration:   time.Minute,
	})
	defer limiter.Close()

	status := http.StatusUnauthorized
	h := RateLimitMiddleware(limiter, "login", noop)(
		AuthSuccessMiddleware(limiter, "login", noop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})),
	)
	hit := func() int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", nil))
		return rec.Code
	}

	hit()
	status = http.StatusOK
	assert.Equal(t, http.StatusOK, hit())
	status = http.StatusUnauthorized
	assert.Equal(t, http.StatusUnauthorized, hit())
	assert.Equal(t, http.StatusUnauthorized, hit())
}

func TestRecoverPanic(t *testing.T) {
	h := RecoverPanic(noop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	var id string
	h := LoggingMiddleware(noop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", id)
}
