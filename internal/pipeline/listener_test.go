package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/facturehq/facture/internal/config"
	invoicedomain "github.com/facturehq/facture/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingStore struct {
	invoicedomain.Store
	polls atomic.Int64
}

func (s *countingStore) GetByID(ctx context.Context, id snowflake.ID) (invoicedomain.Invoice, error) {
	s.polls.Add(1)
	return s.Store.GetByID(ctx, id)
}

func newListenerFixture(t *testing.T, pollInterval time.Duration) (*dispatcherFixture, *Listener, *countingStore) {
	t.Helper()

	f := newDispatcherFixture(t)
	counting := &countingStore{Store: f.store}

	holder, err := config.NewStaticPipelineConfigHolder(config.PipelineConfig{
		PollAttempts:        5,
		PollInterval:        pollInterval,
		SubscribeRetries:    1,
		SubscribeBackoffMin: time.Millisecond,
		SubscribeBackoffMax: time.Millisecond,
	})
	require.NoError(t, err)

	l := NewListener(ListenerParams{
		Log:        zap.NewNop(),
		Config:     config.Config{},
		Holder:     holder,
		Store:      counting,
		Dispatcher: f.d,
	})
	return f, l, counting
}

// eventPayload mirrors the JSON built by the invoices insert trigger,
// id serialized as ::text.
func eventPayload(t *testing.T, invoice invoicedomain.Invoice) string {
	t.Helper()
	pdfURL := "null"
	if invoice.PDFURL != nil {
		pdfURL = strconv.Quote(*invoice.PDFURL)
	}
	return fmt.Sprintf(
		`{"id": "%d", "invoice_number": %q, "status": %q, "pdf_url": %s, "customer_email": %q, "total_amount": %d}`,
		invoice.ID, invoice.InvoiceNumber, invoice.Status, pdfURL, invoice.CustomerEmail, invoice.TotalAmount,
	)
}

func TestHandleNotification_DocumentAlreadyAttached(t *testing.T) {
	f, l, counting := newListenerFixture(t, 5*time.Millisecond)

	url, err := f.storage.Put(context.Background(), "ready.pdf", []byte("%PDF-fake"))
	require.NoError(t, err)
	invoice := f.createInvoice(t, invoicedomain.InvoiceStatusGenerated, &url)

	l.handleNotification(context.Background(), eventPayload(t, invoice))

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, int64(1), counting.polls.Load())

	stored, err := f.store.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusSent, stored.Status)
}

func TestHandleNotification_WaitsForRenderer(t *testing.T) {
	f, l, counting := newListenerFixture(t, 10*time.Millisecond)

	invoice := f.createInvoice(t, invoicedomain.InvoiceStatusPending, nil)
	url, err := f.storage.Put(context.Background(), "late.pdf", []byte("%PDF-fake"))
	require.NoError(t, err)

	// the renderer patch lands while the listener is polling
	go func() {
		time.Sleep(25 * time.Millisecond)
		_, err := f.store.PatchFields(context.Background(), invoice.ID, map[string]any{
			"pdf_url": url,
			"status":  invoicedomain.InvoiceStatusGenerated,
		})
		if err != nil {
			t.Error(err)
		}
	}()

	l.handleNotification(context.Background(), eventPayload(t, invoice))

	require.Len(t, f.email.sent, 1)
	assert.GreaterOrEqual(t, counting.polls.Load(), int64(2))

	stored, err := f.store.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusSent, stored.Status)
}

func TestHandleNotification_DropsAfterPollBudget(t *testing.T) {
	f, l, counting := newListenerFixture(t, time.Millisecond)

	invoice := f.createInvoice(t, invoicedomain.InvoiceStatusPending, nil)

	l.handleNotification(context.Background(), eventPayload(t, invoice))

	assert.Empty(t, f.email.sent)
	assert.Equal(t, int64(5), counting.polls.Load())

	// the row is untouched so delivery can be re-triggered later
	stored, err := f.store.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, stored.Status)
	assert.Nil(t, stored.PDFURL)
}

func TestHandleNotification_UndecodablePayloadIsDropped(t *testing.T) {
	f, l, counting := newListenerFixture(t, time.Millisecond)

	l.handleNotification(context.Background(), `{"id": not-json`)

	assert.Empty(t, f.email.sent)
	assert.Equal(t, int64(0), counting.polls.Load())
}

func TestHandleNotification_MissingRowPollsThenDrops(t *testing.T) {
	f, l, counting := newListenerFixture(t, time.Millisecond)

	ghost := f.createInvoice(t, invoicedomain.InvoiceStatusPending, nil)
	require.NoError(t, f.db.Delete(&invoicedomain.Invoice{}, "id = ?", ghost.ID).Error)

	l.handleNotification(context.Background(), eventPayload(t, ghost))

	assert.Empty(t, f.email.sent)
	assert.Equal(t, int64(5), counting.polls.Load())
}
