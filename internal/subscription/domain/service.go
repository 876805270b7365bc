package domain

import (
	"context"
	"errors"
	"time"

	invoicedomain "github.com/facturehq/facture/internal/invoice/domain"
)

var (
	ErrNotFound        = errors.New("subscription_not_found")
	ErrInvalidID       = errors.New("invalid_subscription_id")
	ErrInvalidCustomer = errors.New("invalid_subscription_customer")
	ErrInvalidPlan     = errors.New("invalid_subscription_plan")
	ErrInvalidStatus   = errors.New("invalid_subscription_status")
	ErrInvalidWindow   = errors.New("invalid_subscription_window")
)

type AssignItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

type AssignRequest struct {
	CustomerID string              `json:"customer_id"`
	PlanID     string              `json:"plan_id"`
	Status     AssignmentStatus    `json:"status"`
	Items      []AssignItemRequest `json:"items"`
	StartAt    *time.Time          `json:"start_at,omitempty"`
	EndAt      *time.Time          `json:"end_at,omitempty"`
	AutoRenew  bool                `json:"auto_renew"`
	Notes      string              `json:"notes,omitempty"`
}

type PatchAssignmentRequest struct {
	Status    *AssignmentStatus   `json:"status,omitempty"`
	Items     []AssignItemRequest `json:"items,omitempty"`
	EndAt     *time.Time          `json:"end_at,omitempty"`
	AutoRenew *bool               `json:"auto_renew,omitempty"`
	Notes     *string             `json:"notes,omitempty"`
}

// AssignResponse carries the persisted assignment and, when the
// operation crossed into a billable state, the invoice it produced.
type AssignResponse struct {
	Subscription SubscriptionAssignment `json:"subscription"`
	Invoice      *invoicedomain.Invoice `json:"invoice,omitempty"`
}

type ListAssignmentResponse struct {
	Subscriptions []SubscriptionAssignment `json:"subscriptions"`
}

type Service interface {
	Assign(context.Context, AssignRequest) (AssignResponse, error)
	Patch(ctx context.Context, id string, req PatchAssignmentRequest) (AssignResponse, error)
	GetByID(ctx context.Context, id string) (SubscriptionAssignment, error)
	List(context.Context) (ListAssignmentResponse, error)
}
