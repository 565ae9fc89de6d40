// File: internal/repository/option/interface.go
package option

import (
	"context"
	"errors"

	"github.com/iyunix/go-smsassistent/internal/domain"
)

var ErrOptionNotFound = errors.New("option not found")

// OptionRepository stores named JSON settings documents.
type OptionRepository interface {
	Get(ctx context.Context, name string) (*domain.Option, error)
	Save(ctx context.Context, name, value string) error
	// Seed stores value only when the option does not exist yet. It reports
	// whether a row was written.
	Seed(ctx context.Context, name, value string) (bool, error)
	List(ctx context.Context) ([]domain.Option, error)
}
