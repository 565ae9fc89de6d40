package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-smsassistent/internal/auth"
	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/repository"
	"github.com/iyunix/go-smsassistent/internal/repository/option"
	"github.com/iyunix/go-smsassistent/internal/repository/sentmessage"
	"github.com/iyunix/go-smsassistent/internal/services/notifier"
	"github.com/iyunix/go-smsassistent/internal/services/settings"
	"github.com/iyunix/go-smsassistent/internal/services/template"
)

// fakeGateway answers gateway paths with canned bodies and keeps the last form.
type fakeGateway struct {
	*httptest.Server
	mu        sync.Mutex
	responses map[string]string
	lastPath  string
	lastForm  url.Values
}

func newFakeGateway(t *testing.T, responses map[string]string) *fakeGateway {
	g := &fakeGateway{responses: responses}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		g.mu.Lock()
		g.lastPath = r.URL.Path
		g.lastForm = r.PostForm
		g.mu.Unlock()
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(g.Close)
	return g
}

func (g *fakeGateway) form() url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastForm
}

type adminFixture struct {
	settings  *settings.Service
	messages  sentmessage.SentMessageRepository
	gateway   *GatewayHandler
	settingsH *SettingsHandler
	messagesH *MessagesHandler
	health    *HealthHandler
	fake      *fakeGateway
}

func newAdminFixture(t *testing.T, responses map[string]string) *adminFixture {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)

	log := &logger.NoOpLogger{}
	svc := settings.NewService(option.NewOptionRepository(db), log, settings.GatewayTimeout(5*time.Second))
	messages := sentmessage.NewSentMessageRepository(db)
	n := notifier.New(svc, messages, notifier.ClientFactory(log), template.Store{Name: "Shop"}, log)

	return &adminFixture{
		settings:  svc,
		messages:  messages,
		gateway:   NewGatewayHandler(svc, ClientFactory(log), n, log),
		settingsH: NewSettingsHandler(svc, log),
		messagesH: NewMessagesHandler(messages, n, log),
		health:    NewHealthHandler(db),
		fake:      newFakeGateway(t, responses),
	}
}

func (f *adminFixture) configure(t *testing.T) {
	t.Helper()
	_, err := f.settings.SaveGeneral(context.Background(), domain.GeneralOptions{
		Username: "user",
		Password: "pass",
		Sender:   "Shop",
		BaseURL:  f.fake.URL,
		Mode:     "json",
	})
	require.NoError(t, err)
}

func call(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestGatewayBalance(t *testing.T) {
	f := newAdminFixture(t, map[string]string{"/api/v1.2/credits/plain": "12.50"})
	f.configure(t)

	rec := call(f.gateway.Balance, http.MethodGet, "/api/admin/gateway/balance", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["error"])
	assert.Equal(t, "12.50", body["result"])
	assert.Equal(t, "pass", f.fake.form().Get("password"))
}

func TestGatewayFailureIsBadGateway(t *testing.T) {
	f := newAdminFixture(t, map[string]string{"/api/v1.2/credits/plain": "-2"})
	f.configure(t)

	rec := call(f.gateway.Balance, http.MethodGet, "/api/admin/gateway/balance", "")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["error"])
	assert.NotEmpty(t, body["error_messages"])
}

func TestGatewayWithoutCredentials(t *testing.T) {
	f := newAdminFixture(t, nil)

	rec := call(f.gateway.Senders, http.MethodGet, "/api/admin/gateway/senders", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGatewaySenders(t *testing.T) {
	f := newAdminFixture(t, map[string]string{"/api/v1.2/json": `[{"name":"Shop"}]`})
	f.configure(t)

	rec := call(f.gateway.Senders, http.MethodGet, "/api/admin/gateway/senders", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"result":[{"name":"Shop"}]`)
}

func TestVerifyUsesConfiguredSender(t *testing.T) {
	f := newAdminFixture(t, map[string]string{"/api/v1.2/sms_code_generate/plain": "hash-1"})
	f.configure(t)

	rec := call(f.gateway.Verify, http.MethodPost, "/api/admin/gateway/verify",
		`{"phone":"+375291234567","text":"Code {KOD}"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hash-1", decode(t, rec)["result"])
	form := f.fake.form()
	assert.Equal(t, "Shop", form.Get("sender"))
	assert.Equal(t, "+375291234567", form.Get("recipient"))
	assert.Equal(t, "Code {KOD}", form.Get("message"))
}

func TestGatewayRequestValidation(t *testing.T) {
	f := newAdminFixture(t, nil)
	f.configure(t)

	rec := call(f.gateway.HLR, http.MethodPost, "/api/admin/gateway/hlr", `{"phones":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["fields"], "Phones")

	rec = call(f.gateway.SMSStatus, http.MethodPost, "/api/admin/gateway/sms/status", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(f.gateway.VerifyCheck, http.MethodPost, "/api/admin/gateway/verify/check", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestSMSIsLogged(t *testing.T) {
	f := newAdminFixture(t, map[string]string{"/api/v1.2/send_sms/plain": "555"})
	f.configure(t)

	rec := call(f.gateway.TestSMS, http.MethodPost, "/api/admin/gateway/test-sms",
		`{"phone":"+375291234567","text":"Hello"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hello", f.fake.form().Get("message"))

	rec = call(f.messagesH.List, http.MethodGet, "/api/admin/messages?event=test_message", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["total"])
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 1)
	row := msgs[0].(map[string]interface{})
	assert.Equal(t, float64(555), row["sms_code"])
	assert.Equal(t, "admin", row["audience"])
}

func TestTestSMSGatewayErrorIsBadGateway(t *testing.T) {
	f := newAdminFixture(t, map[string]string{"/api/v1.2/send_sms/plain": "-1"})
	f.configure(t)

	rec := call(f.gateway.TestSMS, http.MethodPost, "/api/admin/gateway/test-sms",
		`{"phone":"+375291234567","text":"Hello"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMessagesListPagination(t *testing.T) {
	f := newAdminFixture(t, nil)
	rows := make([]*domain.SentMessage, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, &domain.SentMessage{
			BatchID:  "batch",
			Event:    domain.EventCustomerCreated,
			Audience: domain.AudienceCustomer,
			State:    domain.MessageStateFailed,
		})
	}
	require.NoError(t, f.messages.CreateInBatch(context.Background(), rows))

	rec := call(f.messagesH.List, http.MethodGet, "/api/admin/messages?page=2&limit=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(5), body["total"])
	assert.Equal(t, float64(2), body["page"])
	assert.Len(t, body["messages"], 2)
}

func TestMessagesRefreshWithNothingPending(t *testing.T) {
	f := newAdminFixture(t, nil)

	rec := call(f.messagesH.Refresh, http.MethodPost, "/api/admin/messages/refresh", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["updated"])
}

func TestSettingsGeneral(t *testing.T) {
	f := newAdminFixture(t, nil)

	rec := call(f.settingsH.PutGeneral, http.MethodPut, "/api/admin/settings/general",
		`{"active":true,"username":"user","password":"pass","sender":"Shop","mode":"XML"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "xml", decode(t, rec)["mode"])

	rec = call(f.settingsH.GetGeneral, http.MethodGet, "/api/admin/settings/general", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", decode(t, rec)["username"])

	rec = call(f.settingsH.PutGeneral, http.MethodPut, "/api/admin/settings/general", `{"mode":"plain"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["fields"], "Mode")
}

func TestSettingsStatus(t *testing.T) {
	f := newAdminFixture(t, nil)
	withStatus := func(h http.HandlerFunc, method, status, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/admin/settings/status/"+url.PathEscape(status), strings.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"status": status})
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	rec := withStatus(f.settingsH.PutStatus, http.MethodPut, "wc-processing",
		`{"customer_active":true,"customer_template":"Order {order_id}"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = withStatus(f.settingsH.GetStatus, http.MethodGet, "processing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Order {order_id}", decode(t, rec)["customer_template"])

	rec = withStatus(f.settingsH.GetStatus, http.MethodGet, "bad status!", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = withStatus(f.settingsH.PutStatus, http.MethodPut, "processing", `{"manager_phones":"abc"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSettingsCustomerAndPlaceholders(t *testing.T) {
	f := newAdminFixture(t, nil)

	rec := call(f.settingsH.PutCustomer, http.MethodPut, "/api/admin/settings/customer",
		`{"customer_active":true,"customer_template":"Welcome, {firstname}"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(f.settingsH.GetCustomer, http.MethodGet, "/api/admin/settings/customer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome, {firstname}", decode(t, rec)["customer_template"])

	rec = call(f.settingsH.Placeholders, http.MethodGet, "/api/admin/settings/placeholders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var groups map[string]placeholderGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	assert.Len(t, groups["order"].Tags, len(template.OrderPlaceholders()))
	assert.Contains(t, groups["customer"].HTML, "{firstname}")
}

func TestHealth(t *testing.T) {
	f := newAdminFixture(t, nil)

	rec := call(f.health.Health, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestLogin(t *testing.T) {
	hash, err := domain.HashPassword("correct-horse")
	require.NoError(t, err)
	secret := []byte("test-secret")
	h := NewAuthHandler(&domain.Admin{ID: domain.AdminID, Username: "admin", PasswordHash: hash}, secret, &logger.NoOpLogger{})

	rec := call(h.Login, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, err := auth.ValidateToken(resp.Token, secret)
	require.NoError(t, err)
	assert.Equal(t, domain.AdminID, id)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	rec = call(h.Login, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"wrong-horse"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(h.Login, http.MethodPost, "/api/admin/login", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
