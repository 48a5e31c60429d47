package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/pkg/db/pagination"
)

type ListFilter struct {
	// Search matches the display number; a bare fragment matches the ID
	// suffix.
	Search string
	Status Status
}

// Totals aggregates a profile's ledger. Paid counts only fully settled
// invoices; Outstanding is the open remainder on Due and Partial ones.
type Totals struct {
	Total       int64 `json:"total"`
	Paid        int64 `json:"paid"`
	Outstanding int64 `json:"outstanding"`
}

type Repository interface {
	Insert(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, profileID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, profileID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Invoice, error)
	Totals(ctx context.Context, profileID snowflake.ID) (Totals, error)
	UpdateFields(ctx context.Context, profileID, id snowflake.ID, fields map[string]any) error
}
