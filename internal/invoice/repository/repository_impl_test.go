package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/facturehq/facture/internal/invoice/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (domain.Store, *snowflake.Node) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return Provide(db), node
}

func seedInvoice(node *snowflake.Node) *domain.Invoice {
	now := time.Now().UTC()
	return &domain.Invoice{
		ID:             node.Generate(),
		InvoiceNumber:  "INV-20260115-1",
		CustomerID:     node.Generate(),
		CustomerName:   "Acme Corp",
		CustomerEmail:  "billing@acme.test",
		SubscriptionID: node.Generate(),
		PlanID:         node.Generate(),
		PlanName:       "Pro",
		PlanPrice:      4900,
		Items: datatypes.NewJSONSlice([]domain.LineItem{
			{ItemID: node.Generate(), Name: "Seats", Quantity: 3, UnitPrice: 1000, Amount: 3000},
		}),
		TotalAmount: 7900,
		Status:      domain.InvoiceStatusPending,
		IssuedAt:    now,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreate_ReturnsPostWriteRow(t *testing.T) {
	store, node := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, seedInvoice(node))
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusPending, created.Status)
	assert.Nil(t, created.PDFURL)
	assert.Len(t, created.Items, 1)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.InvoiceNumber, got.InvoiceNumber)
}

func TestGetByID_NotFound(t *testing.T) {
	store, node := newTestStore(t)

	_, err := store.GetByID(context.Background(), node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPatchFields_EmptyPartialRejectedWithoutMutation(t *testing.T) {
	store, node := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, seedInvoice(node))
	require.NoError(t, err)

	_, err = store.PatchFields(ctx, created.ID, map[string]any{})
	assert.ErrorIs(t, err, domain.ErrEmptyPatch)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt.Unix(), got.UpdatedAt.Unix())
	assert.Equal(t, created.Status, got.Status)
}

func TestPatchFields_ReadYourWrites(t *testing.T) {
	store, node := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, seedInvoice(node))
	require.NoError(t, err)

	url := "http://localhost:8080/documents/inv-1.pdf"
	patched, err := store.PatchFields(ctx, created.ID, map[string]any{
		"pdf_url": url,
		"status":  domain.InvoiceStatusGenerated,
	})
	require.NoError(t, err)

	require.NotNil(t, patched.PDFURL)
	assert.Equal(t, url, *patched.PDFURL)
	assert.Equal(t, domain.InvoiceStatusGenerated, patched.Status)
}

func TestPatchFields_MissingRow(t *testing.T) {
	store, node := newTestStore(t)

	_, err := store.PatchFields(context.Background(), node.Generate(), map[string]any{
		"status": domain.InvoiceStatusCanceled,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByIDs(t *testing.T) {
	store, node := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, seedInvoice(node))
	require.NoError(t, err)
	second := seedInvoice(node)
	second.InvoiceNumber = "INV-20260115-2"
	createdSecond, err := store.Create(ctx, second)
	require.NoError(t, err)

	got, err := store.ListByIDs(ctx, []snowflake.ID{first.ID, createdSecond.ID, node.Generate()})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	empty, err := store.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
