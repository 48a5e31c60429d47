package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/invoice/domain"
	"github.com/printhaus/portal/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, profileID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND id = ?", profileID, id).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, profileID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	stmt := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("profile_id = ?", profileID)

	if needle := strings.ToLower(strings.TrimSpace(filter.Search)); needle != "" {
		needle = strings.TrimPrefix(needle, "inv-")
		// Customers only ever see the last six digits of the ID, so the
		// match is confined to that suffix.
		stmt = stmt.Where(
			"SUBSTR(CAST(id AS TEXT), LENGTH(CAST(id AS TEXT)) - 5) LIKE ?",
			"%"+needle+"%",
		)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
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

	var invoices []*domain.Invoice
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Totals(ctx context.Context, profileID snowflake.ID) (domain.Totals, error) {
	var totals domain.Totals
	err := r.db.WithContext(ctx).Raw(
		`SELECT
			COALESCE(SUM(total_amount), 0) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN amount_paid ELSE 0 END), 0) AS paid,
			COALESCE(SUM(CASE WHEN status IN (?, ?) THEN total_amount - amount_paid ELSE 0 END), 0) AS outstanding
		 FROM invoices WHERE profile_id = ?`,
		domain.StatusPaid,
		domain.StatusDue,
		domain.StatusPartial,
		profileID,
	).Scan(&totals).Error
	if err != nil {
		return domain.Totals{}, err
	}
	return totals, nil
}

func (r *repo) UpdateFields(ctx context.Context, profileID, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
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
