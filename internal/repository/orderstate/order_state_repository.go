// File: internal/repository/orderstate/order_state_repository.go
package orderstate

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-smsassistent/internal/domain"
)

type gormOrderStateRepository struct {
	db *gorm.DB
}

func NewOrderStateRepository(db *gorm.DB) OrderStateRepository {
	return &gormOrderStateRepository{db: db}
}

func (r *gormOrderStateRepository) Swap(ctx context.Context, orderID int64, status string) (string, error) {
	if orderID <= 0 {
		return "", errors.New("invalid order ID")
	}
	var previous string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var state domain.OrderState
		err := tx.Where("order_id = ?", orderID).First(&state).Error
		switch {
		case err == nil:
			previous = state.Status
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).Create(&domain.OrderState{OrderID: orderID, Status: status}).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to record status of order %d: %w", orderID, err)
	}
	return previous, nil
}

func (r *gormOrderStateRepository) Get(ctx context.Context, orderID int64) (string, error) {
	var state domain.OrderState
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load status of order %d: %w", orderID, err)
	}
	return state.Status, nil
}
