// File: internal/repository/orderstate/interface.go
package orderstate

import "context"

type OrderStateRepository interface {
	// Swap stores status as the order's current status and returns the
	// previous one ("" for an order seen for the first time).
	Swap(ctx context.Context, orderID int64, status string) (previous string, err error)
	Get(ctx context.Context, orderID int64) (string, error)
}
