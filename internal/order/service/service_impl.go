package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/order/domain"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
	"github.com/printhaus/portal/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Profiles profiledomain.Repository
	Statuses statusdomain.Service
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	profiles profiledomain.Repository
	statuses statusdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("order.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		profiles: p.Profiles,
		statuses: p.Statuses,
	}
}

func (s *Service) Create(ctx context.Context, profileID snowflake.ID, req domain.CreateOrderRequest) (*domain.OrderView, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrNoSession
	}
	if req.Quantity <= 0 || req.Rate < 0 || req.AmountReceived < 0 {
		return nil, domain.ErrInvalid
	}

	now := time.Now().UTC()
	orderDate := now
	if req.OrderDate != nil {
		orderDate = req.OrderDate.UTC()
	}

	total := req.Quantity * req.Rate
	if req.AmountReceived > total {
		return nil, domain.ErrInvalid
	}

	order := &domain.Order{
		ID:             s.genID.Generate(),
		ProfileID:      profileID,
		OrderDate:      orderDate,
		OrderType:      strings.TrimSpace(req.OrderType),
		Quantity:       req.Quantity,
		Rate:           req.Rate,
		TotalAmount:    total,
		AmountReceived: req.AmountReceived,
		BalanceAmount:  total - req.AmountReceived,
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, err
	}

	// Every order enters the pipeline at Pending.
	if _, err := s.statuses.Append(ctx, order.ID, statusdomain.StatusPending, "system"); err != nil {
		s.log.Warn("initial status append failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	if err := s.profiles.AddOrderStats(ctx, profileID, 1, total); err != nil {
		s.log.Warn("profile counters not updated",
			zap.String("profile_id", profileID.String()),
			zap.Error(err),
		)
	}

	view := domain.NewOrderView(*order, s.resolveOne(ctx, order.ID))
	return &view, nil
}

func (s *Service) Get(ctx context.Context, profileID snowflake.ID, orderID string) (*domain.OrderView, error) {
	id, err := s.parseID(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	view := domain.NewOrderView(*order, s.resolveOne(ctx, order.ID))
	return &view, nil
}

func (s *Service) List(ctx context.Context, profileID snowflake.ID, req domain.ListOrdersRequest) (*domain.ListOrdersResponse, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrNoSession
	}

	var statusFilter *statusdomain.Status
	if strings.TrimSpace(req.Status) != "" {
		parsed, err := statusdomain.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		statusFilter = &parsed
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, profileID, domain.ListFilter{Search: req.Search}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(order *domain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	orderIDs := make([]snowflake.ID, 0, len(items))
	for _, order := range items {
		orderIDs = append(orderIDs, order.ID)
	}
	resolved := s.statuses.ResolveMany(ctx, orderIDs)
	byOrder := resolved.ByOrder()

	views := make([]domain.OrderView, 0, len(items))
	for _, order := range items {
		res := byOrder[order.ID]
		// The status filter only keeps confirmed matches; an order whose
		// lookup failed never masquerades as Pending in filtered views.
		if statusFilter != nil && (!res.OK || res.Status != *statusFilter) {
			continue
		}
		views = append(views, domain.NewOrderView(*order, res))
	}

	resp := &domain.ListOrdersResponse{
		Orders:     views,
		Unresolved: resolved.Failed,
	}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, profileID snowflake.ID, orderID string, req domain.UpdateOrderRequest) (*domain.OrderView, error) {
	id, err := s.parseID(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	quantity := order.Quantity
	rate := order.Rate
	received := order.AmountReceived

	fields := map[string]any{}
	if req.OrderType != nil {
		fields["order_type"] = strings.TrimSpace(*req.OrderType)
	}
	if req.OrderDate != nil {
		fields["order_date"] = req.OrderDate.UTC()
	}
	if req.Notes != nil {
		fields["notes"] = strings.TrimSpace(*req.Notes)
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, domain.ErrInvalid
		}
		quantity = *req.Quantity
	}
	if req.Rate != nil {
		if *req.Rate < 0 {
			return nil, domain.ErrInvalid
		}
		rate = *req.Rate
	}
	if req.AmountReceived != nil {
		if *req.AmountReceived < 0 {
			return nil, domain.ErrInvalid
		}
		received = *req.AmountReceived
	}

	total := quantity * rate
	if received > total {
		return nil, domain.ErrInvalid
	}

	if quantity != order.Quantity || rate != order.Rate || received != order.AmountReceived {
		fields["quantity"] = quantity
		fields["rate"] = rate
		fields["total_amount"] = total
		fields["amount_received"] = received
		fields["balance_amount"] = total - received
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, profileID, id, fields); err != nil {
			return nil, err
		}
		if delta := total - order.TotalAmount; delta != 0 {
			if err := s.profiles.AddOrderStats(ctx, profileID, 0, delta); err != nil {
				s.log.Warn("profile counters not updated",
					zap.String("profile_id", profileID.String()),
					zap.Error(err),
				)
			}
		}
	}

	return s.Get(ctx, profileID, id.String())
}

func (s *Service) SoftDelete(ctx context.Context, profileID snowflake.ID, orderID string) error {
	id, err := s.parseID(orderID)
	if err != nil {
		return err
	}

	order, err := s.repo.FindByID(ctx, profileID, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, profileID, id); err != nil {
		return err
	}

	if err := s.profiles.AddOrderStats(ctx, profileID, -1, -order.TotalAmount); err != nil {
		s.log.Warn("profile counters not updated",
			zap.String("profile_id", profileID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *Service) resolveOne(ctx context.Context, orderID snowflake.ID) statusdomain.Resolution {
	resolved := s.statuses.ResolveMany(ctx, []snowflake.ID{orderID})
	if len(resolved.Resolutions) == 1 {
		return resolved.Resolutions[0]
	}
	return statusdomain.Resolution{
		OrderID: orderID,
		Status:  statusdomain.StatusPending,
		Label:   statusdomain.StatusPending.String(),
	}
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if prefix := "ord-"; len(trimmed) > len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
		trimmed = trimmed[len(prefix):]
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil || id == 0 {
		return 0, domain.ErrInvalid
	}
	return id, nil
}
