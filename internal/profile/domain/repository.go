package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, profile *Profile) error
	FindByUserID(ctx context.Context, userID snowflake.ID) (*Profile, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Profile, error)
	UpdateFields(ctx context.Context, userID snowflake.ID, fields map[string]any) error
	// AddOrderStats adjusts the denormalized counters; deltas may be
	// negative.
	AddOrderStats(ctx context.Context, profileID snowflake.ID, deltaOrders int64, deltaSpent int64) error
}
