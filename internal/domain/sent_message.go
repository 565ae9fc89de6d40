// File: internal/domain/sent_message.go
package domain

import (
	"strings"
	"time"
)

type MessageState string

const (
	MessageStatePending MessageState = "pending" // accepted by the gateway, delivery not final yet
	MessageStateFailed  MessageState = "failed"
	MessageStateDone    MessageState = "done"
)

type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceManager  Audience = "manager"
	AudienceAdmin    Audience = "admin"
)

type Event string

const (
	EventCustomerCreated    Event = "customer_created"
	EventOrderStatusChanged Event = "order_status_changed"
	EventTestMessage        Event = "test_message"
)

// SentMessage is one row of the send log: a recipient of a send call, or a
// whole call when it failed before the gateway produced per-recipient records.
type SentMessage struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	BatchID       string       `gorm:"index;size:36;not null" json:"batch_id"`
	Event         Event        `gorm:"size:32;index;not null" json:"event"`
	EntityID      string       `gorm:"size:64;index" json:"entity_id"`
	Status        string       `gorm:"size:64" json:"order_status,omitempty"`
	Audience      Audience     `gorm:"size:16;not null" json:"audience"`
	Phone         string       `gorm:"size:32" json:"phone"`
	Text          string       `gorm:"type:text" json:"text"`
	Wire          string       `gorm:"size:8" json:"wire"`
	SMSCode       int          `gorm:"index" json:"sms_code"`
	SMSCount      int          `json:"sms_count"`
	State         MessageState `gorm:"size:16;index;not null" json:"state"`
	GatewayStatus string       `gorm:"size:64" json:"gateway_status,omitempty"`
	ErrorCode     int          `json:"error_code,omitempty"`
	Error         string       `gorm:"type:text" json:"error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

var finalGatewayStatuses = map[string]struct{}{
	"delivered":     {},
	"notdelivered":  {},
	"undeliverable": {},
	"expired":       {},
	"rejected":      {},
	"deleted":       {},
	"failed":        {},
}

// IsFinalGatewayStatus reports whether a delivery status will not change any more.
func IsFinalGatewayStatus(status string) bool {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(status))
	_, ok := finalGatewayStatuses[key]
	return ok
}

// ApplyGatewayStatus records a refreshed delivery status.
func (m *SentMessage) ApplyGatewayStatus(status string) {
	m.GatewayStatus = status
	if IsFinalGatewayStatus(status) {
		m.State = MessageStateDone
	}
}
