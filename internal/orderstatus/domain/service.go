package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Latest never fails from the caller's point of view: an empty log
	// or a read error degrades to StatusPending.
	Latest(ctx context.Context, orderID snowflake.ID) Status
	History(ctx context.Context, orderID snowflake.ID) []StatusEvent
	Append(ctx context.Context, orderID snowflake.ID, status Status, updatedBy string) (*StatusEvent, error)
	// ResolveMany looks up the latest status for each order
	// concurrently. Orders whose lookup failed are tagged, not folded
	// into the successful results.
	ResolveMany(ctx context.Context, orderIDs []snowflake.ID) *ResolveResult
}

// Resolution is one order's outcome in a bulk lookup.
type Resolution struct {
	OrderID snowflake.ID `json:"order_id"`
	Status  Status       `json:"-"`
	Label   string       `json:"status"`
	OK      bool         `json:"ok"`
}

type ResolveResult struct {
	Resolutions []Resolution `json:"resolutions"`
	Failed      int          `json:"failed"`
}

// ByOrder indexes the resolutions for callers that join against other
// records.
func (r *ResolveResult) ByOrder() map[snowflake.ID]Resolution {
	out := make(map[snowflake.ID]Resolution, len(r.Resolutions))
	for _, res := range r.Resolutions {
		out[res.OrderID] = res
	}
	return out
}
