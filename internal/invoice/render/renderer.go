// Package render converts finalized invoices into retrievable document
// artifacts.
package render

import (
	"context"

	"github.com/facturehq/facture/internal/invoice/domain"
)

// Renderer produces a billing document from invoice content and returns
// its location reference. Render is a pure function of the invoice:
// rendering the same invoice twice produces a fresh artifact at a new
// reference without invalidating the previous one. Failures are
// explicit errors, never a nil reference.
type Renderer interface {
	Render(ctx context.Context, invoice domain.Invoice) (string, error)
}
