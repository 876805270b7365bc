package service

import (
	"context"
	"fmt"
	"time"

	"github.com/facturehq/facture/internal/config"
	"gorm.io/gorm"
)

// Numberer generates human-readable invoice numbers in the form
// INV-YYYYMMDD-<sequence>.
//
// Two generators exist. The default "count" mode derives the sequence
// from the current row count plus one; two concurrent creations can
// read the same count, so uniqueness is best-effort. The "sequence"
// mode increments a dedicated counter row atomically inside the
// caller's transaction. The choice is configuration, not code.
type Numberer struct {
	mode string
}

func NewNumberer(cfg config.Config) *Numberer {
	return &Numberer{mode: cfg.InvoiceNumbering}
}

// Next returns the next invoice number. tx must be the transaction the
// invoice insert runs in so the sequence increment commits with it.
func (n *Numberer) Next(ctx context.Context, tx *gorm.DB, issuedAt time.Time) (string, error) {
	var seq int64
	var err error
	switch n.mode {
	case config.NumberingSequence:
		seq, err = n.nextFromSequence(ctx, tx)
	default:
		seq, err = n.nextFromCount(ctx, tx)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%d", issuedAt.UTC().Format("20060102"), seq), nil
}

func (n *Numberer) nextFromCount(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(`SELECT COUNT(*) FROM invoices`).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

func (n *Numberer) nextFromSequence(ctx context.Context, tx *gorm.DB) (int64, error) {
	if err := tx.WithContext(ctx).Exec(
		`UPDATE invoice_sequences SET value = value + 1 WHERE name = 'invoice_number'`,
	).Error; err != nil {
		return 0, err
	}

	var value int64
	err := tx.WithContext(ctx).Raw(
		`SELECT value FROM invoice_sequences WHERE name = 'invoice_number'`,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, fmt.Errorf("invoice_sequences row %q is missing", "invoice_number")
	}
	return value, nil
}
