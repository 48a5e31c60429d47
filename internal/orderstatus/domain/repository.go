package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var ErrNoEvents = errors.New("no status events recorded")

type Repository interface {
	Append(ctx context.Context, event *StatusEvent) error
	// Latest returns the most recent event, ErrNoEvents when the log is
	// empty for the order.
	Latest(ctx context.Context, orderID snowflake.ID) (*StatusEvent, error)
	// History returns the full log in chronological order.
	History(ctx context.Context, orderID snowflake.ID) ([]StatusEvent, error)
}
