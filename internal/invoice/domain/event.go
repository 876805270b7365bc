package domain

import "github.com/bwmarrin/snowflake"

// NotifyChannel is the database publish/notify channel that announces
// invoice-row creation.
const NotifyChannel = "new_invoice"

// NewInvoiceEvent is the ephemeral payload published on NotifyChannel
// at invoice insert time. It is a snapshot, never persisted; the
// listener re-reads the row when the document reference is absent.
type NewInvoiceEvent struct {
	// snowflake.ID marshals itself as a quoted string, matching the
	// id::text the insert trigger emits.
	ID            snowflake.ID  `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	Status        InvoiceStatus `json:"status"`
	PDFURL        *string       `json:"pdf_url"`
	CustomerEmail string        `json:"customer_email"`
	TotalAmount   int64         `json:"total_amount"`
}
