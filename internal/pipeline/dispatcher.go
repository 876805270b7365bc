package pipeline

import (
	"context"
	"fmt"
	"html"
	"path"

	invoicedomain "github.com/facturehq/facture/internal/invoice/domain"
	"github.com/facturehq/facture/internal/observability/metrics"
	"github.com/facturehq/facture/internal/providers/email"
	"github.com/facturehq/facture/internal/providers/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type DispatcherParams struct {
	fx.In

	Log     *zap.Logger
	Store   invoicedomain.Store
	Storage storage.Provider
	Email   email.Provider
}

// Dispatcher sends rendered invoices to customers and records the
// outcome on the invoice row.
type Dispatcher struct {
	log     *zap.Logger
	store   invoicedomain.Store
	storage storage.Provider
	email   email.Provider
	metrics *metrics.PipelineMetrics
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	return &Dispatcher{
		log:     p.Log.Named("pipeline.dispatcher"),
		store:   p.Store,
		storage: p.Storage,
		email:   p.Email,
		metrics: metrics.Pipeline(),
	}
}

// Deliver emails the invoice document and patches the row to "sent".
//
// Preconditions are checked, not assumed: an invoice without a document
// reference, with a dangling reference, or already past "sent" is
// skipped with a log line and a nil error. The status patch happens
// only after the transport confirmed the send, so a crash between send
// and patch re-delivers rather than silently losing the invoice.
func (d *Dispatcher) Deliver(ctx context.Context, invoice invoicedomain.Invoice) error {
	log := d.log.With(
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)

	if !invoice.HasDocument() {
		log.Warn("skipping delivery, invoice has no document reference")
		d.metrics.IncDelivery(metrics.DeliveryOutcomeSkipped)
		return nil
	}
	if err := invoicedomain.ValidateTransition(invoice, invoicedomain.InvoiceStatusSent); err != nil {
		log.Info("skipping delivery, invoice not in a sendable status",
			zap.String("status", string(invoice.Status)),
		)
		d.metrics.IncDelivery(metrics.DeliveryOutcomeSkipped)
		return nil
	}

	content, err := d.storage.Get(ctx, *invoice.PDFURL)
	if err != nil {
		log.Warn("skipping delivery, document artifact not retrievable",
			zap.String("pdf_url", *invoice.PDFURL),
			zap.Error(err),
		)
		d.metrics.IncDelivery(metrics.DeliveryOutcomeSkipped)
		return nil
	}

	subject := fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)
	attachment := &email.Attachment{
		Filename: path.Base(*invoice.PDFURL),
		Content:  content,
	}
	err = d.email.Send(ctx, []string{invoice.CustomerEmail}, subject, deliveryBody(invoice), attachment)
	if err != nil {
		log.Error("invoice delivery failed", zap.Error(err))
		d.metrics.IncDelivery(metrics.DeliveryOutcomeFailed)
		return fmt.Errorf("send invoice %s: %w", invoice.InvoiceNumber, err)
	}

	_, err = d.store.PatchFields(ctx, invoice.ID, map[string]any{
		"status": invoicedomain.InvoiceStatusSent,
	})
	if err != nil {
		log.Error("invoice sent but status patch failed", zap.Error(err))
		d.metrics.IncDelivery(metrics.DeliveryOutcomeFailed)
		return fmt.Errorf("mark invoice %s sent: %w", invoice.InvoiceNumber, err)
	}

	log.Info("invoice delivered", zap.String("to", invoice.CustomerEmail))
	d.metrics.IncDelivery(metrics.DeliveryOutcomeSent)
	return nil
}

func deliveryBody(invoice invoicedomain.Invoice) string {
	due := ""
	if invoice.DueAt != nil {
		due = fmt.Sprintf("<p>Payment is due by <b>%s</b>.</p>", invoice.DueAt.UTC().Format("January 2, 2006"))
	}
	return fmt.Sprintf(
		`<p>Hello %s,</p>
<p>Your invoice <b>%s</b> for plan <b>%s</b> is attached.</p>
%s<p>Thank you.</p>`,
		html.EscapeString(invoice.CustomerName),
		html.EscapeString(invoice.InvoiceNumber),
		html.EscapeString(invoice.PlanName),
		due,
	)
}
