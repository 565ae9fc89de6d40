// File: internal/domain/events.go
package domain

import (
	"strings"
	"time"
)

// WooCommerce webhook payloads, reduced to the fields the notifications use.

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type LineItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

type OrderEvent struct {
	ID                 int64      `json:"id"`
	Status             string     `json:"status"`
	Currency           string     `json:"currency"`
	Total              string     `json:"total"`
	PaymentMethod      string     `json:"payment_method"`
	PaymentMethodTitle string     `json:"payment_method_title"`
	DateCreated        string     `json:"date_created"`
	Billing            Address    `json:"billing"`
	LineItems          []LineItem `json:"line_items"`
}

// wooDateLayout is the site-local timestamp format of date_created.
const wooDateLayout = "2006-01-02T15:04:05"

// CreatedAt parses date_created; a zero time is returned when it is missing
// or malformed.
func (o *OrderEvent) CreatedAt() time.Time {
	s := strings.TrimSpace(o.DateCreated)
	if t, err := time.Parse(wooDateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

type CustomerEvent struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Billing   Address `json:"billing"`
}
