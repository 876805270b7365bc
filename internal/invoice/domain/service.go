package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("invoice_not_found")
	ErrInvalidInvoiceID  = errors.New("invalid_invoice_id")
	ErrEmptyPatch        = errors.New("invoice_patch_empty")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrDocumentMissing   = errors.New("invoice_document_missing")
)

// Store is the invoice record store. All writes are single-row and
// atomic, and every write returns the post-write row. Status
// transitions are not validated here; that is the caller's contract
// (see ValidateTransition).
type Store interface {
	WithTrx(tx *gorm.DB) Store
	Create(ctx context.Context, invoice *Invoice) (Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (Invoice, error)
	PatchFields(ctx context.Context, id snowflake.ID, fields map[string]any) (Invoice, error)
	ListByIDs(ctx context.Context, ids []snowflake.ID) ([]Invoice, error)
}

type ListInvoiceRequest struct {
	Status      *InvoiceStatus
	CustomerID  *snowflake.ID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListInvoiceResponse struct {
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
}
