// File: internal/handlers/messages_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/repository/sentmessage"
	"github.com/iyunix/go-smsassistent/internal/services/settings"
)

const defaultRefreshLimit = 100

// StatusRefresher updates delivery statuses of pending log rows.
type StatusRefresher interface {
	RefreshStatuses(ctx context.Context, limit int) (int, error)
}

// MessagesHandler serves the send log.
type MessagesHandler struct {
	messages  sentmessage.SentMessageRepository
	refresher StatusRefresher
	logger    logger.Logger
}

func NewMessagesHandler(messages sentmessage.SentMessageRepository, refresher StatusRefresher, log logger.Logger) *MessagesHandler {
	return &MessagesHandler{messages: messages, refresher: refresher, logger: log}
}

// List returns one page of the log, newest first.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	filter := sentmessage.Filter{
		Event:    domain.Event(q.Get("event")),
		EntityID: q.Get("entity_id"),
		State:    domain.MessageState(q.Get("state")),
		Phone:    q.Get("phone"),
	}

	messages, total, err := h.messages.FindWithPagination(r.Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error("failed to list sent messages", "error", err)
		http.Error(w, "Failed to retrieve messages", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// Refresh polls the gateway for pending delivery statuses.
func (h *MessagesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = defaultRefreshLimit
	}

	updated, err := h.refresher.RefreshStatuses(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to refresh delivery statuses", "error", err)
		if errors.Is(err, settings.ErrGatewayDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}
