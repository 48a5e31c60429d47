package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/order/domain"
	"github.com/printhaus/portal/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

// live scopes every read to rows that are not soft-deleted.
func (r *repo) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Order{}).Where("is_deleted = ?", false)
}

func (r *repo) Insert(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, profileID, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := r.live(ctx).
		Where("profile_id = ? AND id = ?", profileID, id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, profileID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Order, error) {
	stmt := r.live(ctx).Where("profile_id = ?", profileID)

	if needle := strings.ToLower(strings.TrimSpace(filter.Search)); needle != "" {
		needle = strings.TrimPrefix(needle, "ord-")
		pattern := "%" + needle + "%"
		stmt = stmt.Where("CAST(id AS TEXT) LIKE ? OR LOWER(order_type) LIKE ?", pattern, pattern)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil {
			if createdAt, parseErr := time.Parse(time.RFC3339, cursor.CreatedAt); parseErr == nil {
				stmt = stmt.Where(
					"created_at < ? OR (created_at = ? AND id < ?)",
					createdAt, createdAt, cursor.ID,
				)
			}
		}
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 50
	}

	var orders []*domain.Order
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) ListAll(ctx context.Context, profileID snowflake.ID) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.live(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) UpdateFields(ctx context.Context, profileID, id snowflake.ID, fields map[string]any) error {
	tx := r.live(ctx).
		Where("profile_id = ? AND id = ?", profileID, id).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) SoftDelete(ctx context.Context, profileID, id snowflake.ID) error {
	now := time.Now().UTC()
	tx := r.live(ctx).
		Where("profile_id = ? AND id = ?", profileID, id).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
