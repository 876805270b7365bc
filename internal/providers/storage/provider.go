package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no artifact exists at a reference.
var ErrNotFound = errors.New("document_not_found")

// Provider persists rendered billing documents. Put returns a URL that
// works both for re-fetch (Get) and for attaching to outbound mail.
type Provider interface {
	Put(ctx context.Context, name string, content []byte) (string, error)
	Get(ctx context.Context, url string) ([]byte, error)
}
