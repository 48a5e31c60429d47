package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Order is a print job placed through the portal. Amounts are integer
// cents. Deletion is a soft flag; rows never leave the table so the
// status log and invoices keep valid references.
type Order struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ProfileID      snowflake.ID `gorm:"column:profile_id;not null;index" json:"profile_id"`
	OrderDate      time.Time    `gorm:"column:order_date;not null" json:"order_date"`
	OrderType      string       `gorm:"column:order_type;not null;default:''" json:"order_type"`
	Quantity       int64        `gorm:"not null;default:0" json:"quantity"`
	Rate           int64        `gorm:"not null;default:0" json:"rate"`
	TotalAmount    int64        `gorm:"column:total_amount;not null;default:0" json:"total_amount"`
	AmountReceived int64        `gorm:"column:amount_received;not null;default:0" json:"amount_received"`
	BalanceAmount  int64        `gorm:"column:balance_amount;not null;default:0" json:"balance_amount"`
	Notes          string       `gorm:"not null;default:''" json:"notes,omitempty"`
	IsDeleted      bool         `gorm:"column:is_deleted;not null;default:false;index" json:"-"`
	DeletedAt      *time.Time   `gorm:"column:deleted_at" json:"-"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// DisplayID is the customer-facing order number.
func (o Order) DisplayID() string {
	return "ORD-" + o.ID.String()
}
