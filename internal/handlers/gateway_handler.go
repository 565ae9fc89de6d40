// File: internal/handlers/gateway_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/lo"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/services/notifier"
	"github.com/iyunix/go-smsassistent/internal/services/settings"
	"github.com/iyunix/go-smsassistent/internal/services/sms"
)

// GatewayFactory builds a gateway client for the stored settings.
type GatewayFactory func(cfg *sms.Config) (sms.Gateway, error)

// ClientFactory returns a GatewayFactory backed by the real client.
func ClientFactory(log logger.Logger) GatewayFactory {
	return func(cfg *sms.Config) (sms.Gateway, error) {
		return sms.NewClient(cfg, log)
	}
}

// GatewayConfigSource supplies the current gateway configuration.
type GatewayConfigSource interface {
	ClientConfig(ctx context.Context) (*sms.Config, domain.GeneralOptions, error)
}

// TestSender sends the admin test message.
type TestSender interface {
	SendTest(ctx context.Context, phone, text string) (*notifier.Outcome, error)
}

// GatewayHandler exposes the gateway operations to the admin API. Gateway
// failures are answered with 502 and the full Result as body.
type GatewayHandler struct {
	config  GatewayConfigSource
	clients GatewayFactory
	tester  TestSender
	logger  logger.Logger
}

func NewGatewayHandler(config GatewayConfigSource, clients GatewayFactory, tester TestSender, log logger.Logger) *GatewayHandler {
	return &GatewayHandler{config: config, clients: clients, tester: tester, logger: log}
}

type hlrRequest struct {
	Phones []string `json:"phones" validate:"required,min=1,max=500,dive,required"`
}

type hlrStatusRequest struct {
	Codes []int `json:"codes" validate:"required,min=1,max=500,dive,gt=0"`
}

type smsStatusRequest struct {
	IDs []int `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
}

type verifyRequest struct {
	Phone  string `json:"phone" validate:"required,max=20"`
	Text   string `json:"text" validate:"required,max=1000"`
	Sender string `json:"sender" validate:"omitempty,max=15"`
}

type verifyCheckRequest struct {
	CheckHash string `json:"check_hash" validate:"required"`
	CheckCode string `json:"check_code" validate:"required"`
}

type testSMSRequest struct {
	Phone string `json:"phone" validate:"required,max=20"`
	Text  string `json:"text" validate:"required,max=1000"`
}

func (h *GatewayHandler) Balance(w http.ResponseWriter, r *http.Request) {
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	res := client.GetBalance(r.Context())
	h.respond(w, "balance", res.Error, res)
}

func (h *GatewayHandler) Senders(w http.ResponseWriter, r *http.Request) {
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	res := client.GetSenders(r.Context())
	h.respond(w, "senders", res.Error, res)
}

func (h *GatewayHandler) Templates(w http.ResponseWriter, r *http.Request) {
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	res := client.GetTemplates(r.Context())
	h.respond(w, "templates", res.Error, res)
}

func (h *GatewayHandler) HLR(w http.ResponseWriter, r *http.Request) {
	var req hlrRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	res := client.SendHLR(r.Context(), req.Phones)
	h.respond(w, "hlr", res.Error, res)
}

func (h *GatewayHandler) HLRStatus(w http.ResponseWriter, r *http.Request) {
	var req hlrStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	res := client.GetHLRStatus(r.Context(), req.Codes)
	h.respond(w, "hlr status", res.Error, res)
}

func (h *GatewayHandler) SMSStatus(w http.ResponseWriter, r *http.Request) {
	var req smsStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	res := client.GetSMSStatus(r.Context(), req.IDs)
	h.respond(w, "sms status", res.Error, res)
}

// Verify starts a phone verification; the sender defaults to the configured one.
func (h *GatewayHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	client, general, ok := h.client(w, r)
	if !ok {
		return
	}
	sender := req.Sender
	if sender == "" {
		sender = general.Sender
	}
	res := client.CheckPhone(r.Context(), sender, req.Phone, req.Text)
	h.respond(w, "verify", res.Error, res)
}

func (h *GatewayHandler) VerifyCheck(w http.ResponseWriter, r *http.Request) {
	var req verifyCheckRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	res := client.CheckCode(r.Context(), req.CheckHash, req.CheckCode)
	h.respond(w, "verify check", res.Error, res)
}

// TestSMS sends a message through the notification pipeline and logs it.
func (h *GatewayHandler) TestSMS(w http.ResponseWriter, r *http.Request) {
	var req testSMSRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	out, err := h.tester.SendTest(r.Context(), req.Phone, req.Text)
	if err != nil {
		h.configError(w, err)
		return
	}
	failed := lo.SomeBy(out.Messages, func(m *domain.SentMessage) bool {
		return m.State == domain.MessageStateFailed
	})
	h.respond(w, "test sms", failed, out)
}

func (h *GatewayHandler) client(w http.ResponseWriter, r *http.Request) (sms.Gateway, domain.GeneralOptions, bool) {
	cfg, general, err := h.config.ClientConfig(r.Context())
	if err != nil {
		h.configError(w, err)
		return nil, general, false
	}
	client, err := h.clients(cfg)
	if err != nil {
		h.logger.Error("failed to create gateway client", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create gateway client")
		return nil, general, false
	}
	return client, general, true
}

func (h *GatewayHandler) configError(w http.ResponseWriter, err error) {
	if errors.Is(err, settings.ErrGatewayDisabled) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.logger.Error("failed to load gateway settings", "error", err)
	writeError(w, http.StatusInternalServerError, "Failed to load gateway settings")
}

func (h *GatewayHandler) respond(w http.ResponseWriter, op string, failed bool, body interface{}) {
	if failed {
		h.logger.Warn("gateway call failed", "operation", op)
		writeJSON(w, http.StatusBadGateway, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
