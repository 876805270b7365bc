package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("customer_not_found")
	ErrInvalidID    = errors.New("invalid_customer_id")
	ErrInvalidName  = errors.New("invalid_customer_name")
	ErrInvalidEmail = errors.New("invalid_customer_email")
)

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ListCustomerResponse struct {
	Customers []Customer `json:"customers"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	List(context.Context) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
}
