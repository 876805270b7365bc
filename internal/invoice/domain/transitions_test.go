package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to InvoiceStatus
		want     bool
	}{
		{InvoiceStatusPending, InvoiceStatusGenerated, true},
		{InvoiceStatusPending, InvoiceStatusSent, true},
		{InvoiceStatusPending, InvoiceStatusFailed, true},
		{InvoiceStatusPending, InvoiceStatusPaid, false},
		{InvoiceStatusGenerated, InvoiceStatusSent, true},
		{InvoiceStatusGenerated, InvoiceStatusPending, false},
		{InvoiceStatusSent, InvoiceStatusPaid, true},
		{InvoiceStatusSent, InvoiceStatusOverdue, true},
		{InvoiceStatusSent, InvoiceStatusRefunded, true},
		{InvoiceStatusSent, InvoiceStatusGenerated, false},
		{InvoiceStatusOverdue, InvoiceStatusPaid, true},
		{InvoiceStatusPaid, InvoiceStatusRefunded, true},
		{InvoiceStatusPaid, InvoiceStatusSent, false},
		{InvoiceStatusCanceled, InvoiceStatusSent, false},
		{InvoiceStatusRefunded, InvoiceStatusPaid, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidateTransition_SentRequiresDocument(t *testing.T) {
	invoice := Invoice{Status: InvoiceStatusGenerated}
	assert.ErrorIs(t, ValidateTransition(invoice, InvoiceStatusSent), ErrDocumentMissing)

	invoice.PDFURL = strPtr("http://localhost/documents/inv.pdf")
	assert.NoError(t, ValidateTransition(invoice, InvoiceStatusSent))
}

func TestValidateTransition_IllegalMove(t *testing.T) {
	invoice := Invoice{Status: InvoiceStatusPaid, PDFURL: strPtr("http://x/doc.pdf")}
	assert.ErrorIs(t, ValidateTransition(invoice, InvoiceStatusSent), ErrInvalidTransition)
}
