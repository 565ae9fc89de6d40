// File: internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/iyunix/go-smsassistent/internal/auth"
	"github.com/iyunix/go-smsassistent/internal/domain"
	"github.com/iyunix/go-smsassistent/internal/logger"
)

// AuthHandler issues admin API tokens.
type AuthHandler struct {
	admin     *domain.Admin
	secretKey []byte
	tokenTTL  time.Duration
	logger    logger.Logger
}

func NewAuthHandler(admin *domain.Admin, secretKey []byte, log logger.Logger) *AuthHandler {
	return &AuthHandler{admin: admin, secretKey: secretKey, tokenTTL: auth.DefaultTTL, logger: log}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the admin credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := h.admin.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.logger.Warn("admin login failed", "username", req.Username)
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.logger.Error("admin login error", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	token, expiresAt, err := auth.GenerateJWT(h.admin.ID, h.secretKey, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to issue admin token", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.logger.Info("admin logged in", "username", req.Username)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}
