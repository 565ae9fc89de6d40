// File: internal/domain/option.go
package domain

import (
	"strings"
	"time"
)

// Option group names.
const (
	OptionGeneral      = "general"
	OptionNewCustomer  = "new_customer"
	statusOptionPrefix = "new_status_wc-"
)

// Option is one named settings document stored as JSON.
type Option struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusOptionName returns the option group for a WooCommerce order status.
// Both "processing" and "wc-processing" map to "new_status_wc-processing".
func StatusOptionName(status string) string {
	return statusOptionPrefix + strings.TrimPrefix(status, "wc-")
}

// GeneralOptions is the "general" group: the master switch and gateway access.
type GeneralOptions struct {
	Active        bool   `json:"active"`
	Username      string `json:"username"`
	Password      string `json:"password,omitempty"`
	Token         string `json:"token,omitempty"`
	Sender        string `json:"sender" validate:"max=15"`
	BaseURL       string `json:"base_url" validate:"omitempty,url"`
	Mode          string `json:"mode" validate:"omitempty,oneof=json xml"`
	WebhookURL    string `json:"webhook_url" validate:"omitempty,url"`
	SubscribeName string `json:"subscribe_name"`
}

// NotificationOptions is the shape shared by the per-status groups and the
// new customer group.
type NotificationOptions struct {
	CustomerActive   bool   `json:"customer_active"`
	CustomerTemplate string `json:"customer_template"`
	ManagerActive    bool   `json:"manager_active"`
	// Semicolon separated list of manager phones.
	ManagerPhones   string `json:"manager_phones" validate:"omitempty,phonelist"`
	ManagerTemplate string `json:"manager_template"`
}
