package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/printhaus/portal/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, profileID snowflake.ID, req CreateInvoiceRequest) (*InvoiceView, error)
	Get(ctx context.Context, profileID snowflake.ID, invoiceID string) (*InvoiceView, error)
	List(ctx context.Context, profileID snowflake.ID, req ListInvoicesRequest) (*ListInvoicesResponse, error)
	Update(ctx context.Context, profileID snowflake.ID, invoiceID string, req UpdateInvoiceRequest) (*InvoiceView, error)
}

type CreateInvoiceRequest struct {
	OrderID     string     `json:"order_id"`
	TotalAmount int64      `json:"total_amount"`
	AmountPaid  int64      `json:"amount_paid"`
	DueDate     *time.Time `json:"due_date"`
	Notes       string     `json:"notes"`
}

type UpdateInvoiceRequest struct {
	AmountPaid    *int64     `json:"amount_paid"`
	DueDate       *time.Time `json:"due_date"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod *string    `json:"payment_method"`
	Notes         *string    `json:"notes"`
}

type ListInvoicesRequest struct {
	Search    string
	Status    string
	PageToken string
	PageSize  int
}

type InvoiceView struct {
	Invoice       Invoice `json:"invoice"`
	DisplayNumber string  `json:"display_number"`
}

type ListInvoicesResponse struct {
	Invoices []InvoiceView       `json:"invoices"`
	Totals   Totals              `json:"totals"`
	PageInfo pagination.PageInfo `json:"page_info"`
}
