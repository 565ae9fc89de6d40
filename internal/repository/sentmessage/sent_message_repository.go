// File: internal/repository/sentmessage/sent_message_repository.go
package sentmessage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iyunix/go-smsassistent/internal/domain"
)

const maxPageSize = 1000

type gormSentMessageRepository struct {
	db *gorm.DB
}

func NewSentMessageRepository(db *gorm.DB) SentMessageRepository {
	return &gormSentMessageRepository{db: db}
}

func (r *gormSentMessageRepository) CreateInBatch(ctx context.Context, messages []*domain.SentMessage) error {
	if len(messages) == 0 {
		return nil
	}
	for i, m := range messages {
		if m == nil {
			return fmt.Errorf("message %d is nil", i)
		}
		if m.BatchID == "" || m.Event == "" || m.State == "" {
			return fmt.Errorf("message %d: batch id, event and state are required", i)
		}
	}
	if err := r.db.WithContext(ctx).CreateInBatches(messages, 100).Error; err != nil {
		return fmt.Errorf("failed to store sent messages: %w", err)
	}
	return nil
}

func (r *gormSentMessageRepository) FindByID(ctx context.Context, id uint) (*domain.SentMessage, error) {
	if id == 0 {
		return nil, errors.New("invalid sent message ID")
	}
	var m domain.SentMessage
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSentMessageNotFound
		}
		return nil, fmt.Errorf("failed to load sent message %d: %w", id, err)
	}
	return &m, nil
}

// FindWithPagination returns a page of the log, newest first, plus the total
// number of matching rows.
func (r *gormSentMessageRepository) FindWithPagination(ctx context.Context, filter Filter, limit, offset int) ([]domain.SentMessage, int64, error) {
	if limit <= 0 || limit > maxPageSize {
		return nil, 0, fmt.Errorf("invalid limit: must be between 1 and %d", maxPageSize)
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	query := r.applyFilter(r.db.WithContext(ctx).Model(&domain.SentMessage{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sent messages: %w", err)
	}

	var messages []domain.SentMessage
	err := query.Order("created_at desc").Order("id desc").Limit(limit).Offset(offset).Find(&messages).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sent messages: %w", err)
	}
	return messages, total, nil
}

// FindPending returns the oldest rows still waiting for a final delivery status.
func (r *gormSentMessageRepository) FindPending(ctx context.Context, limit int) ([]domain.SentMessage, error) {
	if limit <= 0 || limit > maxPageSize {
		return nil, fmt.Errorf("invalid limit: must be between 1 and %d", maxPageSize)
	}
	var messages []domain.SentMessage
	err := r.db.WithContext(ctx).
		Where("state = ? AND sms_code > 0", domain.MessageStatePending).
		Order("created_at asc").
		Order("id asc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending messages: %w", err)
	}
	return messages, nil
}

func (r *gormSentMessageRepository) Update(ctx context.Context, message *domain.SentMessage) error {
	if message == nil || message.ID == 0 {
		return errors.New("cannot update sent message without ID")
	}
	res := r.db.WithContext(ctx).Save(message)
	if res.Error != nil {
		return fmt.Errorf("failed to update sent message %d: %w", message.ID, res.Error)
	}
	return nil
}

func (r *gormSentMessageRepository) applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.Event != "" {
		q = q.Where("event = ?", f.Event)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.Phone != "" {
		q = q.Where("phone = ?", f.Phone)
	}
	return q
}
