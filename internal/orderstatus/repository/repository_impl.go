package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/orderstatus/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Append(ctx context.Context, event *domain.StatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repo) Latest(ctx context.Context, orderID snowflake.ID) (*domain.StatusEvent, error) {
	var event domain.StatusEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("updated_at desc, id desc").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoEvents
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repo) History(ctx context.Context, orderID snowflake.ID) ([]domain.StatusEvent, error) {
	var events []domain.StatusEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("updated_at asc, id asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
