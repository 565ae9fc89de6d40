// File: internal/repository/sentmessage/interface.go
package sentmessage

import (
	"context"
	"errors"

	"github.com/iyunix/go-smsassistent/internal/domain"
)

var ErrSentMessageNotFound = errors.New("sent message not found")

// SentMessageRepository is the send log.
type SentMessageRepository interface {
	CreateInBatch(ctx context.Context, messages []*domain.SentMessage) error
	FindByID(ctx context.Context, id uint) (*domain.SentMessage, error)
	FindWithPagination(ctx context.Context, filter Filter, limit, offset int) ([]domain.SentMessage, int64, error)
	FindPending(ctx context.Context, limit int) ([]domain.SentMessage, error)
	Update(ctx context.Context, message *domain.SentMessage) error
}

// Filter narrows the log listing. Zero values match everything.
type Filter struct {
	Event    domain.Event
	EntityID string
	State    domain.MessageState
	Phone    string
}
