// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusGenerated InvoiceStatus = "generated"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCanceled  InvoiceStatus = "canceled"
	InvoiceStatusFailed    InvoiceStatus = "failed"
	InvoiceStatusRefunded  InvoiceStatus = "refunded"
)

// LineItem is one billed position, denormalized onto the invoice row.
type LineItem struct {
	ItemID    snowflake.ID `json:"item_id"`
	Name      string       `json:"name"`
	Quantity  int64        `json:"quantity"`
	UnitPrice int64        `json:"unit_price"`
	Amount    int64        `json:"amount"`
}

// Invoice represents one subscription-assignment charge. Customer and
// plan attributes are snapshotted at creation time so later catalog
// edits do not rewrite issued documents.
type Invoice struct {
	ID             snowflake.ID                  `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string                        `gorm:"type:text;not null;index" json:"invoice_number"`
	CustomerID     snowflake.ID                  `gorm:"not null;index" json:"customer_id"`
	CustomerName   string                        `gorm:"type:text;not null" json:"customer_name"`
	CustomerEmail  string                        `gorm:"type:text;not null" json:"customer_email"`
	SubscriptionID snowflake.ID                  `gorm:"not null;index" json:"subscription_id"`
	PlanID         snowflake.ID                  `gorm:"not null;index" json:"plan_id"`
	PlanName       string                        `gorm:"type:text;not null" json:"plan_name"`
	PlanPrice      int64                         `gorm:"not null" json:"plan_price"`
	Items          datatypes.JSONSlice[LineItem] `gorm:"not null;default:'[]'" json:"items"`
	TotalAmount    int64                         `gorm:"not null" json:"total_amount"`
	Status         InvoiceStatus                 `gorm:"type:text;not null;default:'pending'" json:"status"`
	PDFURL         *string                       `gorm:"column:pdf_url;type:text" json:"pdf_url"`
	IssuedAt       time.Time                     `gorm:"not null" json:"issued_at"`
	DueAt          *time.Time                    `gorm:"" json:"due_at,omitempty"`
	Notes          string                        `gorm:"type:text" json:"notes,omitempty"`
	Metadata       datatypes.JSONMap             `gorm:"not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt      time.Time                     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// HasDocument reports whether a rendered artifact reference is set.
// It gates every transition into "sent".
func (i Invoice) HasDocument() bool {
	return i.PDFURL != nil && *i.PDFURL != ""
}
