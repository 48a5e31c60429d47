package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/pkg/db/pagination"
)

// ListFilter narrows the order list. Search matches the display ID and
// the order type, case-insensitively.
type ListFilter struct {
	Search string
}

// Repository implementations must exclude soft-deleted rows from every
// read path.
type Repository interface {
	Insert(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, profileID, id snowflake.ID) (*Order, error)
	List(ctx context.Context, profileID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Order, error)
	ListAll(ctx context.Context, profileID snowflake.ID) ([]*Order, error)
	UpdateFields(ctx context.Context, profileID, id snowflake.ID, fields map[string]any) error
	SoftDelete(ctx context.Context, profileID, id snowflake.ID) error
}
