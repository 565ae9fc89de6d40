// File: cmd/server/routes.go
package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-smsassistent/internal/middleware"
	"github.com/iyunix/go-smsassistent/internal/ratelimit"
)

// limiters groups the rate limiters the router applies.
type limiters struct {
	login   *ratelimit.MemoryRateLimiter
	gateway *ratelimit.MemoryRateLimiter
}

func newRouter(app *Application, rl limiters) *mux.Router {
	log := app.Logger
	r := mux.NewRouter()

	r.Use(middleware.RecoverPanic(log))
	r.Use(middleware.LoggingMiddleware(log))

	// --- Public Routes ---
	r.HandleFunc("/health", app.HealthHandler.Health).Methods("GET")

	webhooks := r.PathPrefix("/webhooks/woocommerce").Subrouter()
	webhooks.Use(middleware.WooSignature(app.Config.WebhookSecret, log))
	webhooks.HandleFunc("/customer", app.WebhookHandler.Customer).Methods("POST")
	webhooks.HandleFunc("/order", app.WebhookHandler.Order).Methods("POST")

	login := middleware.RateLimitMiddleware(rl.login, "login", log)(
		middleware.AuthSuccessMiddleware(rl.login, "login", log)(http.HandlerFunc(app.AuthHandler.Login)),
	)
	r.Handle("/api/admin/login", login).Methods("POST")

	// --- Admin API ---
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.RequireAdmin([]byte(app.Config.JWTSecretKey), log))

	admin.HandleFunc("/settings/general", app.SettingsHandler.GetGeneral).Methods("GET")
	admin.HandleFunc("/settings/general", app.SettingsHandler.PutGeneral).Methods("PUT")
	admin.HandleFunc("/settings/status/{status}", app.SettingsHandler.GetStatus).Methods("GET")
	admin.HandleFunc("/settings/status/{status}", app.SettingsHandler.PutStatus).Methods("PUT")
	admin.HandleFunc("/settings/customer", app.SettingsHandler.GetCustomer).Methods("GET")
	admin.HandleFunc("/settings/customer", app.SettingsHandler.PutCustomer).Methods("PUT")
	admin.HandleFunc("/settings/placeholders", app.SettingsHandler.Placeholders).Methods("GET")

	admin.HandleFunc("/gateway/balance", app.GatewayHandler.Balance).Methods("GET")
	admin.HandleFunc("/gateway/senders", app.GatewayHandler.Senders).Methods("GET")
	admin.HandleFunc("/gateway/templates", app.GatewayHandler.Templates).Methods("GET")
	admin.HandleFunc("/gateway/sms/status", app.GatewayHandler.SMSStatus).Methods("POST")
	admin.HandleFunc("/gateway/hlr/status", app.GatewayHandler.HLRStatus).Methods("POST")

	// Calls that spend gateway credit are throttled.
	paid := admin.PathPrefix("/gateway").Subrouter()
	paid.Use(middleware.RateLimitMiddleware(rl.gateway, "gateway", log))
	paid.HandleFunc("/hlr", app.GatewayHandler.HLR).Methods("POST")
	paid.HandleFunc("/verify", app.GatewayHandler.Verify).Methods("POST")
	paid.HandleFunc("/verify/check", app.GatewayHandler.VerifyCheck).Methods("POST")
	paid.HandleFunc("/test-sms", app.GatewayHandler.TestSMS).Methods("POST")

	admin.HandleFunc("/messages", app.MessagesHandler.List).Methods("GET")
	admin.HandleFunc("/messages/refresh", app.MessagesHandler.Refresh).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	})

	return r
}
