package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/facturehq/facture/internal/clock"
	"github.com/facturehq/facture/internal/invoice/domain"
	"github.com/facturehq/facture/internal/providers/storage"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDFRenderer builds the invoice PDF with maroto and stores it through
// the document storage provider.
type PDFRenderer struct {
	store storage.Provider
	clock clock.Clock
}

func NewPDF(store storage.Provider, clk clock.Clock) *PDFRenderer {
	return &PDFRenderer{store: store, clock: clk}
}

func (r *PDFRenderer) Render(ctx context.Context, invoice domain.Invoice) (string, error) {
	content, err := buildPDF(invoice)
	if err != nil {
		return "", fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}

	// A timestamped name gives every render a fresh reference; an
	// earlier artifact stays readable until its reference is replaced.
	name := fmt.Sprintf("%s-%d.pdf",
		strings.ToLower(invoice.InvoiceNumber),
		r.clock.Now().UnixMilli(),
	)
	url, err := r.store.Put(ctx, name, content)
	if err != nil {
		return "", fmt.Errorf("store invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return url, nil
}

func buildPDF(invoice domain.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+invoice.IssuedAt.Format("2006-01-02"), props.Text{Top: 4}),
			text.New("Plan: "+invoice.PlanName, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.CustomerName, props.Text{Top: 5}),
			text.New(invoice.CustomerEmail, props.Text{Top: 9}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range invoice.Items {
		m.AddRow(8,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(item.Amount), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, formatAmount(invoice.TotalAmount), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	if strings.TrimSpace(invoice.Notes) != "" {
		m.AddRow(15,
			text.NewCol(12, invoice.Notes, props.Text{Size: 8, Top: 5}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
