// Package domain contains persistence models for portal invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status represents invoice payment states. It is stored, not derived:
// the books keep whatever state was recorded, even if amounts drift.
type Status string

const (
	StatusDue     Status = "Due"
	StatusPartial Status = "Partial"
	StatusPaid    Status = "Paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDue, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// Invoice is a bill raised against a profile, usually linked to one
// order. Amounts are integer cents.
type Invoice struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrderID       *snowflake.ID `gorm:"column:order_id;index" json:"order_id,omitempty"`
	ProfileID     snowflake.ID  `gorm:"column:profile_id;not null;index" json:"profile_id"`
	TotalAmount   int64         `gorm:"column:total_amount;not null;default:0" json:"total_amount"`
	AmountPaid    int64         `gorm:"column:amount_paid;not null;default:0" json:"amount_paid"`
	Status        Status        `gorm:"type:text;not null;default:'Due'" json:"status"`
	DueDate       *time.Time    `gorm:"column:due_date" json:"due_date,omitempty"`
	PaymentDate   *time.Time    `gorm:"column:payment_date" json:"payment_date,omitempty"`
	PaymentMethod string        `gorm:"column:payment_method;not null;default:''" json:"payment_method,omitempty"`
	Notes         string        `gorm:"not null;default:''" json:"notes,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// DisplayNumber is the customer-facing invoice number: the last six
// characters of the ID.
func (i Invoice) DisplayNumber() string {
	raw := i.ID.String()
	if len(raw) > 6 {
		raw = raw[len(raw)-6:]
	}
	return "INV-" + raw
}
