package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/facturehq/facture/internal/catalog/domain"
	catalogservice "github.com/facturehq/facture/internal/catalog/service"
	"github.com/facturehq/facture/internal/clock"
	"github.com/facturehq/facture/internal/config"
	customerdomain "github.com/facturehq/facture/internal/customer/domain"
	customerservice "github.com/facturehq/facture/internal/customer/service"
	invoicedomain "github.com/facturehq/facture/internal/invoice/domain"
	invoicerender "github.com/facturehq/facture/internal/invoice/render"
	invoicerepository "github.com/facturehq/facture/internal/invoice/repository"
	invoiceservice "github.com/facturehq/facture/internal/invoice/service"
	"github.com/facturehq/facture/internal/pipeline"
	plandomain "github.com/facturehq/facture/internal/plan/domain"
	planservice "github.com/facturehq/facture/internal/plan/service"
	"github.com/facturehq/facture/internal/providers/email"
	"github.com/facturehq/facture/internal/providers/storage"
	subscriptiondomain "github.com/facturehq/facture/internal/subscription/domain"
	subscriptionservice "github.com/facturehq/facture/internal/subscription/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recorderEmail struct {
	sent int
}

func (e *recorderEmail) Send(context.Context, []string, string, string, *email.Attachment) error {
	e.sent++
	return nil
}

type testServer struct {
	engine *gin.Engine
	email  *recorderEmail
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&catalogdomain.Item{},
		&plandomain.Plan{},
		&subscriptiondomain.SubscriptionAssignment{},
		&invoicedomain.Invoice{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		HTTPAddr:         ":0",
		DocumentDir:      t.TempDir(),
		DocumentBaseURL:  "/documents",
		InvoiceNumbering: config.NumberingCount,
	}
	log := zap.NewNop()

	store, err := storage.NewLocal(cfg.DocumentDir, cfg.DocumentBaseURL)
	require.NoError(t, err)
	renderer := invoicerender.NewPDF(store, clock.System())
	invoiceStore := invoicerepository.Provide(db)
	mail := &recorderEmail{}

	dispatcher := pipeline.NewDispatcher(pipeline.DispatcherParams{
		Log:     log,
		Store:   invoiceStore,
		Storage: store,
		Email:   mail,
	})

	engine := NewEngine(cfg, log)
	NewServer(ServerParams{
		Gin:         engine,
		Cfg:         cfg,
		DB:          db,
		GenID:       node,
		CustomerSvc: customerservice.New(customerservice.Params{DB: db, Log: log, GenID: node}),
		CatalogSvc:  catalogservice.New(catalogservice.Params{DB: db, Log: log, GenID: node}),
		PlanSvc:     planservice.New(planservice.Params{DB: db, Log: log, GenID: node}),
		SubscriptionSvc: subscriptionservice.New(subscriptionservice.Params{
			DB:           db,
			Log:          log,
			GenID:        node,
			Clock:        clock.System(),
			InvoiceStore: invoiceStore,
			Numberer:     invoiceservice.NewNumberer(cfg),
			Renderer:     renderer,
		}),
		InvoiceSvc: invoiceservice.NewService(invoiceservice.ServiceParam{
			DB:    db,
			Log:   log,
			Store: invoiceStore,
		}),
		Dispatcher: dispatcher,
	})

	return &testServer{engine: engine, email: mail}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	var envelope map[string]json.RawMessage
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func decodeData[T any](t *testing.T, envelope map[string]json.RawMessage) T {
	t.Helper()
	var out T
	require.Contains(t, envelope, "data")
	require.NoError(t, json.Unmarshal(envelope["data"], &out))
	return out
}

func TestServer_SubscriptionFlow(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodPost, "/v1/customers", gin.H{
		"name": "Acme Ltd", "email": "billing@acme.test",
	})
	require.Equal(t, http.StatusOK, w.Code)
	customer := decodeData[customerdomain.Customer](t, body)

	w, body = ts.do(t, http.MethodPost, "/v1/items", gin.H{
		"name": "API calls", "unit_price": 150,
	})
	require.Equal(t, http.StatusOK, w.Code)
	item := decodeData[catalogdomain.Item](t, body)

	w, body = ts.do(t, http.MethodPost, "/v1/plans", gin.H{
		"name": "Starter", "price": 2900, "billing_period": "monthly",
	})
	require.Equal(t, http.StatusOK, w.Code)
	plan := decodeData[plandomain.Plan](t, body)

	w, body = ts.do(t, http.MethodPost, "/v1/subscriptions", gin.H{
		"customer_id": customer.ID.String(),
		"plan_id":     plan.ID.String(),
		"status":      "active",
		"items": []gin.H{
			{"item_id": item.ID.String(), "quantity": 4},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[subscriptiondomain.AssignResponse](t, body)
	require.NotNil(t, resp.Invoice)
	assert.Equal(t, int64(600), resp.Invoice.TotalAmount)
	assert.Equal(t, invoicedomain.InvoiceStatusGenerated, resp.Invoice.Status)
	require.NotNil(t, resp.Invoice.PDFURL)

	// manual re-send delivers the document and marks the invoice sent
	w, body = ts.do(t, http.MethodPost, fmt.Sprintf("/v1/invoices/%s/resend", resp.Invoice.ID.String()), nil)
	require.Equal(t, http.StatusOK, w.Code)
	sent := decodeData[invoicedomain.Invoice](t, body)
	assert.Equal(t, invoicedomain.InvoiceStatusSent, sent.Status)
	assert.Equal(t, 1, ts.email.sent)

	w, body = ts.do(t, http.MethodGet, "/v1/invoices?status=sent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	invoices := decodeData[[]invoicedomain.Invoice](t, body)
	require.Len(t, invoices, 1)
	assert.Equal(t, sent.ID, invoices[0].ID)
}

func TestServer_ErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/v1/customers", gin.H{"name": "", "email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/v1/invoices/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	w, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/v1/customers/%s", node.Generate()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/v1/subscriptions", gin.H{
		"customer_id": "abc", "plan_id": "def",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
