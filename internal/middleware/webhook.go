package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/iyunix/go-smsassistent/internal/logger"
)

const (
	// maxWebhookBody bounds the payload read for signature checks.
	maxWebhookBody = 1 << 20

	// SignatureHeader carries WooCommerce's base64 HMAC-SHA256 of the body.
	SignatureHeader = "X-WC-Webhook-Signature"
)

// WooSignature rejects webhook deliveries whose signature header is not the
// base64 HMAC-SHA256 of the body under secret. An empty secret disables the
// check.
func WooSignature(secret string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
			if err != nil {
				writeError(w, http.StatusBadRequest, "Could not read request body")
				return
			}
			if len(body) > maxWebhookBody {
				writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
				return
			}

			if !ValidWooSignature(secret, body, r.Header.Get(SignatureHeader)) {
				log.Warn("webhook signature mismatch",
					"path", r.URL.Path,
					"topic", r.Header.Get("X-WC-Webhook-Topic"),
					"remote", r.RemoteAddr,
				)
				writeError(w, http.StatusUnauthorized, "Invalid signature")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// WooSignatureFor computes the X-WC-Webhook-Signature value of body.
func WooSignatureFor(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func ValidWooSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(WooSignatureFor(secret, body)), []byte(signature))
}
