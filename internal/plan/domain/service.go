package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("plan_not_found")
	ErrInvalidID   = errors.New("invalid_plan_id")
	ErrInvalidName = errors.New("invalid_plan_name")
)

type CreatePlanRequest struct {
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	BillingPeriod string `json:"billing_period"`
}

type ListPlanResponse struct {
	Plans []Plan `json:"plans"`
}

type Service interface {
	Create(context.Context, CreatePlanRequest) (Plan, error)
	List(context.Context) (ListPlanResponse, error)
	GetByID(ctx context.Context, id string) (Plan, error)
}
