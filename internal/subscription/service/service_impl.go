package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/facturehq/facture/internal/catalog/domain"
	"github.com/facturehq/facture/internal/clock"
	customerdomain "github.com/facturehq/facture/internal/customer/domain"
	invoicedomain "github.com/facturehq/facture/internal/invoice/domain"
	"github.com/facturehq/facture/internal/invoice/render"
	invoiceservice "github.com/facturehq/facture/internal/invoice/service"
	plandomain "github.com/facturehq/facture/internal/plan/domain"
	"github.com/facturehq/facture/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// dueTerm is how long after issuance an invoice falls due.
const dueTerm = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	InvoiceStore invoicedomain.Store
	Numberer     *invoiceservice.Numberer
	Renderer     render.Renderer
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	invoiceStore invoicedomain.Store
	numberer     *invoiceservice.Numberer
	renderer     render.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("subscription.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		invoiceStore: p.InvoiceStore,
		numberer:     p.Numberer,
		renderer:     p.Renderer,
	}
}

// Assign persists a new subscription assignment and, when it starts in
// a billable status, synthesizes exactly one invoice for it inside the
// same transaction. The invoice document is then rendered synchronously;
// a rendering failure fails the whole call, and no compensating
// rollback of the committed rows is attempted.
func (s *Service) Assign(ctx context.Context, req domain.AssignRequest) (domain.AssignResponse, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.AssignResponse{}, domain.ErrInvalidCustomer
	}
	planID, err := snowflake.ParseString(strings.TrimSpace(req.PlanID))
	if err != nil || planID == 0 {
		return domain.AssignResponse{}, domain.ErrInvalidPlan
	}

	status := req.Status
	if status == "" {
		status = domain.AssignmentStatusActive
	}
	if !validStatus(status) {
		return domain.AssignResponse{}, domain.ErrInvalidStatus
	}

	items, err := parseItems(req.Items)
	if err != nil {
		return domain.AssignResponse{}, err
	}

	now := s.clock.Now()
	startAt := now
	if req.StartAt != nil {
		startAt = req.StartAt.UTC()
	}
	if req.EndAt != nil && !req.EndAt.After(startAt) {
		return domain.AssignResponse{}, domain.ErrInvalidWindow
	}

	assignment := domain.SubscriptionAssignment{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		PlanID:     planID,
		Status:     status,
		Items:      datatypes.NewJSONSlice(items),
		StartAt:    startAt,
		EndAt:      req.EndAt,
		AutoRenew:  req.AutoRenew,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var invoice *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		if !status.IsBillable() {
			return nil
		}
		issued, err := s.issueInvoice(ctx, tx, assignment)
		if err != nil {
			return err
		}
		invoice = &issued
		return nil
	})
	if err != nil {
		return domain.AssignResponse{}, err
	}

	if invoice != nil {
		finalized, err := s.renderAndPatch(ctx, *invoice)
		if err != nil {
			return domain.AssignResponse{}, err
		}
		invoice = &finalized
	}

	return domain.AssignResponse{Subscription: assignment, Invoice: invoice}, nil
}

// Patch applies a partial update. Exactly one invoice is produced when
// the patch moves the assignment from a non-billable into a billable
// status; edits that stay on either side of that line never re-invoice.
func (s *Service) Patch(ctx context.Context, id string, req domain.PatchAssignmentRequest) (domain.AssignResponse, error) {
	assignmentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || assignmentID == 0 {
		return domain.AssignResponse{}, domain.ErrInvalidID
	}

	var items []domain.AssignmentItem
	if req.Items != nil {
		items, err = parseItems(req.Items)
		if err != nil {
			return domain.AssignResponse{}, err
		}
	}
	if req.Status != nil && !validStatus(*req.Status) {
		return domain.AssignResponse{}, domain.ErrInvalidStatus
	}

	var (
		updated domain.SubscriptionAssignment
		invoice *invoicedomain.Invoice
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.SubscriptionAssignment
		if err := tx.First(&current, "id = ?", assignmentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}

		now := s.clock.Now()
		fields := map[string]any{"updated_at": now}
		if req.Status != nil {
			fields["status"] = *req.Status
		}
		if req.Items != nil {
			fields["items"] = datatypes.NewJSONSlice(items)
		}
		if req.EndAt != nil {
			fields["end_at"] = req.EndAt.UTC()
		}
		if req.AutoRenew != nil {
			fields["auto_renew"] = *req.AutoRenew
		}
		if req.Notes != nil {
			fields["notes"] = strings.TrimSpace(*req.Notes)
		}

		if err := tx.Model(&domain.SubscriptionAssignment{}).
			Where("id = ?", assignmentID).
			Updates(fields).Error; err != nil {
			return err
		}
		if err := tx.First(&updated, "id = ?", assignmentID).Error; err != nil {
			return err
		}

		crossed := req.Status != nil &&
			req.Status.IsBillable() &&
			!current.Status.IsBillable()
		if !crossed {
			return nil
		}

		issued, err := s.issueInvoice(ctx, tx, updated)
		if err != nil {
			return err
		}
		invoice = &issued
		return nil
	})
	if err != nil {
		return domain.AssignResponse{}, err
	}

	if invoice != nil {
		finalized, err := s.renderAndPatch(ctx, *invoice)
		if err != nil {
			return domain.AssignResponse{}, err
		}
		invoice = &finalized
	}

	return domain.AssignResponse{Subscription: updated, Invoice: invoice}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.SubscriptionAssignment, error) {
	assignmentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || assignmentID == 0 {
		return domain.SubscriptionAssignment{}, domain.ErrInvalidID
	}

	var assignment domain.SubscriptionAssignment
	err = s.db.WithContext(ctx).First(&assignment, "id = ?", assignmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.SubscriptionAssignment{}, domain.ErrNotFound
		}
		return domain.SubscriptionAssignment{}, err
	}
	return assignment, nil
}

func (s *Service) List(ctx context.Context) (domain.ListAssignmentResponse, error) {
	var assignments []domain.SubscriptionAssignment
	err := s.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&assignments).Error
	if err != nil {
		return domain.ListAssignmentResponse{}, err
	}
	return domain.ListAssignmentResponse{Subscriptions: assignments}, nil
}

// issueInvoice synthesizes the invoice for a billable assignment inside
// the caller's transaction: customer/plan snapshot, line items from the
// assigned quantities, total = sum of quantity times unit price.
func (s *Service) issueInvoice(ctx context.Context, tx *gorm.DB, assignment domain.SubscriptionAssignment) (invoicedomain.Invoice, error) {
	var customer customerdomain.Customer
	if err := tx.First(&customer, "id = ?", assignment.CustomerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return invoicedomain.Invoice{}, domain.ErrInvalidCustomer
		}
		return invoicedomain.Invoice{}, err
	}

	var plan plandomain.Plan
	if err := tx.First(&plan, "id = ?", assignment.PlanID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return invoicedomain.Invoice{}, domain.ErrInvalidPlan
		}
		return invoicedomain.Invoice{}, err
	}

	lines, total, err := s.buildLines(ctx, tx, assignment.Items)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	now := s.clock.Now()
	number, err := s.numberer.Next(ctx, tx, now)
	if err != nil {
		return invoicedomain.Invoice{}, fmt.Errorf("generate invoice number: %w", err)
	}

	dueAt := now.Add(dueTerm)
	invoice := invoicedomain.Invoice{
		ID:             s.genID.Generate(),
		InvoiceNumber:  number,
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		CustomerEmail:  customer.Email,
		SubscriptionID: assignment.ID,
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		PlanPrice:      plan.Price,
		Items:          datatypes.NewJSONSlice(lines),
		TotalAmount:    total,
		Status:         invoicedomain.InvoiceStatusPending,
		IssuedAt:       now,
		DueAt:          &dueAt,
		Notes:          assignment.Notes,
		Metadata:       datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.invoiceStore.WithTrx(tx).Create(ctx, &invoice)
	if err != nil {
		return invoicedomain.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	return created, nil
}

func (s *Service) buildLines(ctx context.Context, tx *gorm.DB, items []domain.AssignmentItem) ([]invoicedomain.LineItem, int64, error) {
	if len(items) == 0 {
		return nil, 0, nil
	}

	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ItemID)
	}

	var catalogItems []catalogdomain.Item
	if err := tx.WithContext(ctx).Where("id IN ?", ids).Find(&catalogItems).Error; err != nil {
		return nil, 0, err
	}
	byID := make(map[snowflake.ID]catalogdomain.Item, len(catalogItems))
	for _, item := range catalogItems {
		byID[item.ID] = item
	}

	lines := make([]invoicedomain.LineItem, 0, len(items))
	var total int64
	for _, item := range items {
		catalogItem, ok := byID[item.ItemID]
		if !ok {
			return nil, 0, catalogdomain.ErrNotFound
		}
		amount := item.Quantity * catalogItem.UnitPrice
		lines = append(lines, invoicedomain.LineItem{
			ItemID:    catalogItem.ID,
			Name:      catalogItem.Name,
			Quantity:  item.Quantity,
			UnitPrice: catalogItem.UnitPrice,
			Amount:    amount,
		})
		total += amount
	}
	return lines, total, nil
}

// renderAndPatch is the synchronous half of the dual delivery path: it
// renders the document right after the transaction commits and patches
// the reference onto the row. The asynchronous listener converges on
// the same state through the notify channel; both writes are idempotent
// overwrites of the same fields.
func (s *Service) renderAndPatch(ctx context.Context, invoice invoicedomain.Invoice) (invoicedomain.Invoice, error) {
	url, err := s.renderer.Render(ctx, invoice)
	if err != nil {
		return invoicedomain.Invoice{}, fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}

	fields := map[string]any{"pdf_url": url}
	if invoicedomain.CanTransition(invoice.Status, invoicedomain.InvoiceStatusGenerated) {
		fields["status"] = invoicedomain.InvoiceStatusGenerated
	}

	patched, err := s.invoiceStore.PatchFields(ctx, invoice.ID, fields)
	if err != nil {
		return invoicedomain.Invoice{}, fmt.Errorf("attach document to invoice %s: %w", invoice.InvoiceNumber, err)
	}

	s.log.Info("invoice document rendered",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("pdf_url", url),
	)
	return patched, nil
}

func parseItems(reqs []domain.AssignItemRequest) ([]domain.AssignmentItem, error) {
	items := make([]domain.AssignmentItem, 0, len(reqs))
	for _, req := range reqs {
		itemID, err := snowflake.ParseString(strings.TrimSpace(req.ItemID))
		if err != nil || itemID == 0 || req.Quantity <= 0 {
			return nil, catalogdomain.ErrInvalidID
		}
		items = append(items, domain.AssignmentItem{ItemID: itemID, Quantity: req.Quantity})
	}
	return items, nil
}

func validStatus(status domain.AssignmentStatus) bool {
	switch status {
	case domain.AssignmentStatusPending,
		domain.AssignmentStatusActive,
		domain.AssignmentStatusSuspended,
		domain.AssignmentStatusExpired,
		domain.AssignmentStatusCanceled,
		domain.AssignmentStatusRenewed,
		domain.AssignmentStatusFailed:
		return true
	default:
		return false
	}
}
