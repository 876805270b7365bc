package domain

import (
	"encoding/json"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoiceEvent_DecodesTriggerPayload(t *testing.T) {
	// shape produced by the insert trigger: id serialized as ::text
	payload := `{"id": "2094568285184987136", "invoice_number": "INV-20250310-1", "status": "pending", "pdf_url": null, "customer_email": "ana@example.com", "total_amount": 4200}`

	var event NewInvoiceEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &event))

	assert.Equal(t, snowflake.ID(2094568285184987136), event.ID)
	assert.Equal(t, "INV-20250310-1", event.InvoiceNumber)
	assert.Equal(t, InvoiceStatusPending, event.Status)
	assert.Nil(t, event.PDFURL)
	assert.Equal(t, "ana@example.com", event.CustomerEmail)
	assert.Equal(t, int64(4200), event.TotalAmount)
}

func TestNewInvoiceEvent_RoundTrip(t *testing.T) {
	url := "/documents/INV-20250310-2.pdf"
	event := NewInvoiceEvent{
		ID:            snowflake.ID(7),
		InvoiceNumber: "INV-20250310-2",
		Status:        InvoiceStatusGenerated,
		PDFURL:        &url,
		CustomerEmail: "ana@example.com",
		TotalAmount:   600,
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"7"`)

	var decoded NewInvoiceEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, event, decoded)
}
