package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// StatusEvent is one row of the append-only status log. Rows are never
// updated or removed; the latest row wins.
type StatusEvent struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"column:order_id;not null;index" json:"order_id"`
	Status    string       `gorm:"not null" json:"status"`
	UpdatedBy string       `gorm:"column:updated_by;not null;default:''" json:"updated_by"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP;index" json:"updated_at"`
}

// TableName sets the database table name.
func (StatusEvent) TableName() string { return "order_status_log" }
