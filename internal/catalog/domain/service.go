package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound    = errors.New("item_not_found")
	ErrInvalidID   = errors.New("invalid_item_id")
	ErrInvalidName = errors.New("invalid_item_name")
)

type CreateItemRequest struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
}

type ListItemResponse struct {
	Items []Item `json:"items"`
}

type Service interface {
	Create(context.Context, CreateItemRequest) (Item, error)
	List(context.Context) (ListItemResponse, error)
	GetByID(ctx context.Context, id string) (Item, error)
	ListByIDs(ctx context.Context, ids []snowflake.ID) ([]Item, error)
}
