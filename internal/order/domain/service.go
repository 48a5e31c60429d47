package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	"github.com/printhaus/portal/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, profileID snowflake.ID, req CreateOrderRequest) (*OrderView, error)
	Get(ctx context.Context, profileID snowflake.ID, orderID string) (*OrderView, error)
	List(ctx context.Context, profileID snowflake.ID, req ListOrdersRequest) (*ListOrdersResponse, error)
	Update(ctx context.Context, profileID snowflake.ID, orderID string, req UpdateOrderRequest) (*OrderView, error)
	SoftDelete(ctx context.Context, profileID snowflake.ID, orderID string) error
}

type CreateOrderRequest struct {
	OrderDate      *time.Time `json:"order_date"`
	OrderType      string     `json:"order_type"`
	Quantity       int64      `json:"quantity"`
	Rate           int64      `json:"rate"`
	AmountReceived int64      `json:"amount_received"`
	Notes          string     `json:"notes"`
}

type UpdateOrderRequest struct {
	OrderType      *string    `json:"order_type"`
	OrderDate      *time.Time `json:"order_date"`
	Quantity       *int64     `json:"quantity"`
	Rate           *int64     `json:"rate"`
	AmountReceived *int64     `json:"amount_received"`
	Notes          *string    `json:"notes"`
}

type ListOrdersRequest struct {
	Search    string
	Status    string
	PageToken string
	PageSize  int
}

// OrderView joins an order with its resolved pipeline position.
type OrderView struct {
	Order     Order  `json:"order"`
	DisplayID string `json:"display_id"`
	Status    string `json:"status"`
	StatusOK  bool   `json:"status_ok"`
	Progress  int    `json:"progress"`
}

type ListOrdersResponse struct {
	Orders []OrderView `json:"orders"`
	// Unresolved counts orders whose status lookup failed; their rows
	// are still listed, tagged via StatusOK.
	Unresolved int                 `json:"unresolved"`
	PageInfo   pagination.PageInfo `json:"page_info"`
}

// view is a helper shared by the service methods.
func NewOrderView(order Order, res statusdomain.Resolution) OrderView {
	return OrderView{
		Order:     order,
		DisplayID: order.DisplayID(),
		Status:    res.Label,
		StatusOK:  res.OK,
		Progress:  res.Status.Progress(),
	}
}
