// File: internal/domain/order_state.go
package domain

import "time"

// OrderState remembers the last status seen for an order so that repeated
// order.updated webhooks only notify on real status changes.
type OrderState struct {
	OrderID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Status    string `gorm:"size:64;not null"`
	UpdatedAt time.Time
}
