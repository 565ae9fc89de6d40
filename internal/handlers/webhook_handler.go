// File: internal/handlers/webhook_handler.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/repository/orderstate"
	"github.com/iyunix/go-smsassistent/internal/services/notifier"
)

// EventNotifier runs the notification workflows for store events.
type EventNotifier interface {
	CustomerCreated(ctx context.Context, ev domain.CustomerEvent) (*notifier.Outcome, error)
	OrderStatusChanged(ctx context.Context, ev domain.OrderEvent, from, to string) (*notifier.Outcome, error)
}

// WebhookHandler receives WooCommerce webhook deliveries. Notification
// failures are logged and still acknowledged with 200 so WooCommerce does not
// disable the webhook.
type WebhookHandler struct {
	notifier EventNotifier
	orders   orderstate.OrderStateRepository
	logger   logger.Logger
}

func NewWebhookHandler(n EventNotifier, orders orderstate.OrderStateRepository, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{notifier: n, orders: orders, logger: log}
}

type webhookResponse struct {
	Status  string            `json:"status"`
	Outcome *notifier.Outcome `json:"outcome,omitempty"`
	From    string            `json:"from,omitempty"`
	To      string            `json:"to,omitempty"`
}

// Customer handles customer.created deliveries.
func (h *WebhookHandler) Customer(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readDelivery(w, r, "customer.created")
	if !ok {
		return
	}

	var ev domain.CustomerEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == 0 {
		writeError(w, http.StatusBadRequest, "Invalid customer payload")
		return
	}

	out, err := h.notifier.CustomerCreated(r.Context(), ev)
	if err != nil {
		h.logger.Error("customer notification failed", "customer_id", ev.ID, "error", err)
		writeJSON(w, http.StatusOK, webhookResponse{Status: "failed"})
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{Status: "processed", Outcome: out})
}

// Order handles order.created and order.updated deliveries. Notifications go
// out only when the order's status differs from the last one seen.
func (h *WebhookHandler) Order(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readDelivery(w, r, "order.")
	if !ok {
		return
	}

	var ev domain.OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == 0 || ev.Status == "" {
		writeError(w, http.StatusBadRequest, "Invalid order payload")
		return
	}

	previous, err := h.orders.Swap(r.Context(), ev.ID, ev.Status)
	if err != nil {
		h.logger.Error("failed to track order status", "order_id", ev.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to track order status")
		return
	}
	if previous == ev.Status {
		h.logger.Debug("order status unchanged", "order_id", ev.ID, "status", ev.Status)
		writeJSON(w, http.StatusOK, webhookResponse{Status: "unchanged", To: ev.Status})
		return
	}

	out, err := h.notifier.OrderStatusChanged(r.Context(), ev, previous, ev.Status)
	if err != nil {
		h.logger.Error("order notification failed", "order_id", ev.ID, "status", ev.Status, "error", err)
		writeJSON(w, http.StatusOK, webhookResponse{Status: "failed", From: previous, To: ev.Status})
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{Status: "processed", Outcome: out, From: previous, To: ev.Status})
}

// readDelivery reads the body, answers WooCommerce's ping and filters out
// topics this endpoint does not handle. ok is false once a response was written.
func (h *WebhookHandler) readDelivery(w http.ResponseWriter, r *http.Request, topicPrefix string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	// Saving a webhook in WooCommerce sends a form encoded "webhook_id=N" ping.
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("webhook_id=")) {
		h.logger.Info("webhook ping received", "path", r.URL.Path, "webhook_id", r.Header.Get("X-WC-Webhook-ID"))
		writeJSON(w, http.StatusOK, webhookResponse{Status: "pong"})
		return nil, false
	}

	topic := r.Header.Get("X-WC-Webhook-Topic")
	if topic != "" && !strings.HasPrefix(topic, topicPrefix) {
		h.logger.Info("ignoring webhook topic", "path", r.URL.Path, "topic", topic)
		writeJSON(w, http.StatusOK, webhookResponse{Status: "ignored"})
		return nil, false
	}
	return body, true
}
