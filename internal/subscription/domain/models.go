// Package domain contains persistence models for subscription
// assignments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AssignmentStatus represents lifecycle states for a subscription
// assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusSuspended AssignmentStatus = "suspended"
	AssignmentStatusExpired   AssignmentStatus = "expired"
	AssignmentStatusCanceled  AssignmentStatus = "canceled"
	AssignmentStatusRenewed   AssignmentStatus = "renewed"
	AssignmentStatusFailed    AssignmentStatus = "failed"
)

// IsBillable reports whether the status represents an active billing
// relationship. Entering a billable status is what produces an invoice.
func (s AssignmentStatus) IsBillable() bool {
	return s == AssignmentStatusActive || s == AssignmentStatusRenewed
}

// AssignmentItem is a metered catalog item quantity on an assignment.
type AssignmentItem struct {
	ItemID   snowflake.ID `json:"item_id"`
	Quantity int64        `json:"quantity"`
}

// SubscriptionAssignment links a customer to a plan plus a set of
// metered item quantities over a validity window.
type SubscriptionAssignment struct {
	ID         snowflake.ID                        `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID                        `gorm:"not null;index" json:"customer_id"`
	PlanID     snowflake.ID                        `gorm:"not null;index" json:"plan_id"`
	Status     AssignmentStatus                    `gorm:"type:text;not null;default:'pending'" json:"status"`
	Items      datatypes.JSONSlice[AssignmentItem] `gorm:"not null;default:'[]'" json:"items"`
	StartAt    time.Time                           `gorm:"not null" json:"start_at"`
	EndAt      *time.Time                          `gorm:"" json:"end_at,omitempty"`
	AutoRenew  bool                                `gorm:"not null;default:false" json:"auto_renew"`
	Notes      string                              `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time                           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time                           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SubscriptionAssignment) TableName() string { return "subscription_assignments" }
