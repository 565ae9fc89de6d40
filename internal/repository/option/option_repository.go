// File: internal/repository/option/option_repository.go
package option

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-smsassistent/internal/domain"
)

type gormOptionRepository struct {
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) OptionRepository {
	return &gormOptionRepository{db: db}
}

func (r *gormOptionRepository) Get(ctx context.Context, name string) (*domain.Option, error) {
	var opt domain.Option
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&opt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to load option %q: %w", name, err)
	}
	return &opt, nil
}

// Save inserts or overwrites the option.
func (r *gormOptionRepository) Save(ctx context.Context, name, value string) error {
	if name == "" {
		return errors.New("option name cannot be empty")
	}
	opt := domain.Option{Name: name, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&opt).Error
	if err != nil {
		return fmt.Errorf("failed to save option %q: %w", name, err)
	}
	return nil
}

func (r *gormOptionRepository) Seed(ctx context.Context, name, value string) (bool, error) {
	opt := domain.Option{Name: name, Value: value}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&opt)
	if res.Error != nil {
		return false, fmt.Errorf("failed to seed option %q: %w", name, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormOptionRepository) List(ctx context.Context) ([]domain.Option, error) {
	var opts []domain.Option
	if err := r.db.WithContext(ctx).Order("name asc").Find(&opts).Error; err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	return opts, nil
}
