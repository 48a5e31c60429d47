package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Profile is the customer-facing record behind the portal. It is keyed
// by the owning user's ID, never by email, so contact edits cannot
// orphan it. Counter columns are maintained by the order service.
type Profile struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID   `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	Name        string         `gorm:"not null" json:"name"`
	Email       string         `gorm:"not null" json:"email"`
	Company     string         `gorm:"not null;default:''" json:"company,omitempty"`
	Phone       string         `gorm:"not null;default:''" json:"phone,omitempty"`
	TotalOrders int64          `gorm:"column:total_orders;not null;default:0" json:"total_orders"`
	TotalSpent  int64          `gorm:"column:total_spent;not null;default:0" json:"total_spent"`
	Tags        datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"tags,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profiles" }
