package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/internal/invoice/domain"
	orderdomain "github.com/printhaus/portal/internal/order/domain"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
	"github.com/printhaus/portal/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Orders orderdomain.Repository
}

type Service struct {
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	orders orderdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:    p.Log.Named("invoice.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		orders: p.Orders,
	}
}

func (s *Service) Create(ctx context.Context, profileID snowflake.ID, req domain.CreateInvoiceRequest) (*domain.InvoiceView, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrNoSession
	}
	if req.TotalAmount <= 0 || req.AmountPaid < 0 || req.AmountPaid > req.TotalAmount {
		return nil, domain.ErrInvalid
	}

	var orderID *snowflake.ID
	if strings.TrimSpace(req.OrderID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
		if err != nil || parsed == 0 {
			return nil, domain.ErrInvalid
		}
		// The link must point at a live order the caller owns.
		if _, err := s.orders.FindByID(ctx, profileID, parsed); err != nil {
			return nil, err
		}
		orderID = &parsed
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:          s.genID.Generate(),
		OrderID:     orderID,
		ProfileID:   profileID,
		TotalAmount: req.TotalAmount,
		AmountPaid:  req.AmountPaid,
		Status:      statusFor(req.TotalAmount, req.AmountPaid),
		DueDate:     req.DueDate,
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if invoice.Status == domain.StatusPaid {
		invoice.PaymentDate = &now
	}

	if err := s.repo.Insert(ctx, invoice); err != nil {
		return nil, err
	}

	view := newView(*invoice)
	return &view, nil
}

func (s *Service) Get(ctx context.Context, profileID snowflake.ID, invoiceID string) (*domain.InvoiceView, error) {
	id, err := s.parseID(invoiceID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	view := newView(*invoice)
	return &view, nil
}

func (s *Service) List(ctx context.Context, profileID snowflake.ID, req domain.ListInvoicesRequest) (*domain.ListInvoicesResponse, error) {
	if profileID == 0 {
		return nil, profiledomain.ErrNoSession
	}

	filter := domain.ListFilter{Search: req.Search}
	if strings.TrimSpace(req.Status) != "" {
		status := domain.Status(strings.TrimSpace(req.Status))
		if !status.Valid() {
			return nil, domain.ErrInvalid
		}
		filter.Status = status
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, profileID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	// Totals span the whole ledger, not the current page or filter.
	totals, err := s.repo.Totals(ctx, profileID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.InvoiceView, 0, len(items))
	for _, invoice := range items {
		views = append(views, newView(*invoice))
	}

	resp := &domain.ListInvoicesResponse{
		Invoices: views,
		Totals:   totals,
	}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, profileID snowflake.ID, invoiceID string, req domain.UpdateInvoiceRequest) (*domain.InvoiceView, error) {
	id, err := s.parseID(invoiceID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.DueDate != nil {
		fields["due_date"] = req.DueDate.UTC()
	}
	if req.PaymentDate != nil {
		fields["payment_date"] = req.PaymentDate.UTC()
	}
	if req.PaymentMethod != nil {
		fields["payment_method"] = strings.TrimSpace(*req.PaymentMethod)
	}
	if req.Notes != nil {
		fields["notes"] = strings.TrimSpace(*req.Notes)
	}
	if req.AmountPaid != nil {
		paid := *req.AmountPaid
		if paid < 0 || paid > invoice.TotalAmount {
			return nil, domain.ErrInvalid
		}
		fields["amount_paid"] = paid
		fields["status"] = statusFor(invoice.TotalAmount, paid)
		if statusFor(invoice.TotalAmount, paid) == domain.StatusPaid && invoice.PaymentDate == nil && req.PaymentDate == nil {
			now := time.Now().UTC()
			fields["payment_date"] = now
		}
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.UpdateFields(ctx, profileID, id, fields); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, profileID, id.String())
}

func statusFor(total, paid int64) domain.Status {
	switch {
	case paid >= total:
		return domain.StatusPaid
	case paid > 0:
		return domain.StatusPartial
	default:
		return domain.StatusDue
	}
}

func newView(invoice domain.Invoice) domain.InvoiceView {
	return domain.InvoiceView{
		Invoice:       invoice,
		DisplayNumber: invoice.DisplayNumber(),
	}
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	id, err := snowflake.ParseString(trimmed)
	if err != nil || id == 0 {
		return 0, domain.ErrInvalid
	}
	return id, nil
}
