package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/facturehq/facture/internal/invoice/domain"
	"gorm.io/gorm"
)

type store struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Store {
	return &store{db: db}
}

func (s *store) WithTrx(tx *gorm.DB) domain.Store {
	return &store{db: tx}
}

func (s *store) Create(ctx context.Context, invoice *domain.Invoice) (domain.Invoice, error) {
	if err := s.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return domain.Invoice{}, err
	}
	return s.GetByID(ctx, invoice.ID)
}

func (s *store) GetByID(ctx context.Context, id snowflake.ID) (domain.Invoice, error) {
	var invoice domain.Invoice
	err := s.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Invoice{}, domain.ErrNotFound
		}
		return domain.Invoice{}, err
	}
	return invoice, nil
}

// PatchFields applies a partial update to one row and returns the
// post-write row. An empty partial signals a caller bug and is
// rejected before touching the database.
func (s *store) PatchFields(ctx context.Context, id snowflake.ID, fields map[string]any) (domain.Invoice, error) {
	if len(fields) == 0 {
		return domain.Invoice{}, domain.ErrEmptyPatch
	}

	result := s.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return domain.Invoice{}, result.Error
	}
	if result.RowsAffected == 0 {
		return domain.Invoice{}, domain.ErrNotFound
	}

	return s.GetByID(ctx, id)
}

func (s *store) ListByIDs(ctx context.Context, ids []snowflake.ID) ([]domain.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var invoices []domain.Invoice
	err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at asc, id asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
