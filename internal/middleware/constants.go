// File: internal/middleware/constants.go
package middleware

// Context keys for middleware communication
type contextKey string

const (
	AdminIDKey   contextKey = "admin_id"
	RequestIDKey contextKey = "request_id"
)
