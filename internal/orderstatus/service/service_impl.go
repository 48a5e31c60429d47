package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/orderstatus/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("orderstatus.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Latest(ctx context.Context, orderID snowflake.ID) Status {
	status, _ := s.latest(ctx, orderID)
	return status
}

// latest reports ok=false when the lookup itself failed; an empty log
// is a normal Pending, not a failure.
func (s *Service) latest(ctx context.Context, orderID snowflake.ID) (domain.Status, bool) {
	event, err := s.repo.Latest(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNoEvents) {
			return domain.StatusPending, true
		}
		s.log.Warn("status lookup failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return domain.StatusPending, false
	}

	status, err := domain.ParseStatus(event.Status)
	if err != nil {
		// A row written before the label set was locked down; surface
		// Pending rather than breaking every list view.
		s.log.Warn("stored status label unknown",
			zap.String("order_id", orderID.String()),
			zap.String("label", event.Status),
		)
		return domain.StatusPending, false
	}
	return status, true
}

func (s *Service) History(ctx context.Context, orderID snowflake.ID) []domain.StatusEvent {
	events, err := s.repo.History(ctx, orderID)
	if err != nil {
		s.log.Warn("status history lookup failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return []domain.StatusEvent{}
	}
	if events == nil {
		events = []domain.StatusEvent{}
	}
	return events
}

func (s *Service) Append(ctx context.Context, orderID snowflake.ID, status domain.Status, updatedBy string) (*domain.StatusEvent, error) {
	if !status.Valid() {
		return nil, domain.ErrUnknownStatus
	}

	event := &domain.StatusEvent{
		ID:        s.genID.Generate(),
		OrderID:   orderID,
		Status:    status.String(),
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Append(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) ResolveMany(ctx context.Context, orderIDs []snowflake.ID) *domain.ResolveResult {
	result := &domain.ResolveResult{
		Resolutions: make([]domain.Resolution, len(orderIDs)),
	}
	if len(orderIDs) == 0 {
		return result
	}

	var wg sync.WaitGroup
	for i, orderID := range orderIDs {
		wg.Add(1)
		go func(i int, orderID snowflake.ID) {
			defer wg.Done()
			status, ok := s.latest(ctx, orderID)
			result.Resolutions[i] = domain.Resolution{
				OrderID: orderID,
				Status:  status,
				Label:   status.String(),
				OK:      ok,
			}
		}(i, orderID)
	}
	wg.Wait()

	for _, res := range result.Resolutions {
		if !res.OK {
			result.Failed++
		}
	}
	return result
}

// Status is re-exported for callers that only import the service
// package.
type Status = domain.Status
