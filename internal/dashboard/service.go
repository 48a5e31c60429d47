// Package dashboard aggregates the numbers shown on the portal landing
// page.
package dashboard

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/clock"
	invoicedomain "github.com/printhaus/portal/internal/invoice/domain"
	orderdomain "github.com/printhaus/portal/internal/order/domain"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Stats is the landing-page summary. TotalOrders and TotalSpent come
// from the profile counters; PendingOrders counts only confirmed
// resolutions, with failures reported separately in UnresolvedOrders.
type Stats struct {
	TotalOrders      int64                `json:"total_orders"`
	TotalSpent       int64                `json:"total_spent"`
	ThisMonthSpend   int64                `json:"this_month_spend"`
	PendingOrders    int                  `json:"pending_orders"`
	UnresolvedOrders int                  `json:"unresolved_orders"`
	Invoices         invoicedomain.Totals `json:"invoices"`
}

type Service interface {
	Stats(ctx context.Context, profileID snowflake.ID) (*Stats, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Profiles profiledomain.Repository
	Orders   orderdomain.Repository
	Statuses statusdomain.Service
	Invoices invoicedomain.Repository
	Clock    clock.Clock
}

type service struct {
	log      *zap.Logger
	profiles profiledomain.Repository
	orders   orderdomain.Repository
	statuses statusdomain.Service
	invoices invoicedomain.Repository
	clock    clock.Clock
}

func New(p Params) Service {
	return &service{
		log:      p.Log.Named("dashboard.service"),
		profiles: p.Profiles,
		orders:   p.Orders,
		statuses: p.Statuses,
		invoices: p.Invoices,
		clock:    p.Clock,
	}
}

func (s *service) Stats(ctx context.Context, profileID snowflake.ID) (*Stats, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrNoSession
	}

	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListAll(ctx, profileID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var thisMonth int64
	orderIDs := make([]snowflake.ID, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
		if !order.OrderDate.Before(monthStart) && order.OrderDate.Before(monthEnd) {
			thisMonth += order.TotalAmount
		}
	}

	// An order counts as pending until it is confirmed Delivered; a
	// failed lookup counts in neither bucket.
	resolved := s.statuses.ResolveMany(ctx, orderIDs)
	pending := 0
	for _, res := range resolved.Resolutions {
		if res.OK && res.Status != statusdomain.StatusDelivered {
			pending++
		}
	}

	totals, err := s.invoices.Totals(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalOrders:      profile.TotalOrders,
		TotalSpent:       profile.TotalSpent,
		ThisMonthSpend:   thisMonth,
		PendingOrders:    pending,
		UnresolvedOrders: resolved.Failed,
		Invoices:         totals,
	}, nil
}
