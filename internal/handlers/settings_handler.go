// File: internal/handlers/settings_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
	"github.com/iyunix/go-smsassistent/internal/services/settings"
	"github.com/iyunix/go-smsassistent/internal/services/template"
)

type SettingsHandler struct {
	settings *settings.Service
	logger   logger.Logger
}

func NewSettingsHandler(s *settings.Service, log logger.Logger) *SettingsHandler {
	return &SettingsHandler{settings: s, logger: log}
}

func (h *SettingsHandler) GetGeneral(w http.ResponseWriter, r *http.Request) {
	opts, err := h.settings.General(r.Context())
	if err != nil {
		h.fail(w, "load general settings", err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *SettingsHandler) PutGeneral(w http.ResponseWriter, r *http.Request) {
	var opts domain.GeneralOptions
	if !h.decode(w, r, &opts) {
		return
	}
	saved, err := h.settings.SaveGeneral(r.Context(), opts)
	if err != nil {
		h.fail(w, "save general settings", err)
		return
	}
	h.logger.Info("general settings updated", "active", saved.Active, "mode", saved.Mode)
	writeJSON(w, http.StatusOK, saved)
}

func (h *SettingsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := mux.Vars(r)["status"]
	opts, err := h.settings.StatusOptions(r.Context(), status)
	if err != nil {
		h.fail(w, "load status settings", err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *SettingsHandler) PutStatus(w http.ResponseWriter, r *http.Request) {
	status := mux.Vars(r)["status"]
	var opts domain.NotificationOptions
	if !h.decode(w, r, &opts) {
		return
	}
	saved, err := h.settings.SaveStatusOptions(r.Context(), status, opts)
	if err != nil {
		h.fail(w, "save status settings", err)
		return
	}
	h.logger.Info("status settings updated", "status", status)
	writeJSON(w, http.StatusOK, saved)
}

func (h *SettingsHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	opts, err := h.settings.CustomerOptions(r.Context())
	if err != nil {
		h.fail(w, "load customer settings", err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *SettingsHandler) PutCustomer(w http.ResponseWriter, r *http.Request) {
	var opts domain.NotificationOptions
	if !h.decode(w, r, &opts) {
		return
	}
	saved, err := h.settings.SaveCustomerOptions(r.Context(), opts)
	if err != nil {
		h.fail(w, "save customer settings", err)
		return
	}
	h.logger.Info("customer settings updated")
	writeJSON(w, http.StatusOK, saved)
}

type placeholderGroup struct {
	Tags []template.Placeholder `json:"tags"`
	HTML string                 `json:"html"`
}

// Placeholders lists the template tags for order and customer messages.
func (h *SettingsHandler) Placeholders(w http.ResponseWriter, r *http.Request) {
	order, err := group("Order placeholders", template.OrderPlaceholders())
	if err != nil {
		h.fail(w, "render placeholder help", err)
		return
	}
	customer, err := group("Customer placeholders", template.CustomerPlaceholders())
	if err != nil {
		h.fail(w, "render placeholder help", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]placeholderGroup{
		"order":    order,
		"customer": customer,
	})
}

func group(title string, tags []template.Placeholder) (placeholderGroup, error) {
	html, err := template.HelpHTML(title, tags)
	return placeholderGroup{Tags: tags, HTML: html}, err
}

func (h *SettingsHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *SettingsHandler) fail(w http.ResponseWriter, action string, err error) {
	var verr *settings.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, settings.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("failed to "+action, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
