package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_PutGetRoundTrip(t *testing.T) {
	provider, err := NewLocal(t.TempDir(), "http://localhost:8080/documents/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := provider.Put(ctx, "INV-20260115-1.pdf", []byte("%PDF-1.7 test"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/documents/INV-20260115-1.pdf", url)

	content, err := provider.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 test"), content)
}

func TestLocalProvider_GetUnknownReference(t *testing.T) {
	provider, err := NewLocal(t.TempDir(), "http://localhost:8080/documents")
	require.NoError(t, err)

	_, err = provider.Get(context.Background(), "http://localhost:8080/documents/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = provider.Get(context.Background(), "http://elsewhere/other.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalProvider_OverwriteKeepsReferenceReadable(t *testing.T) {
	provider, err := NewLocal(t.TempDir(), "http://localhost:8080/documents")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := provider.Put(ctx, "inv.pdf", []byte("v1"))
	require.NoError(t, err)
	second, err := provider.Put(ctx, "inv-2.pdf", []byte("v2"))
	require.NoError(t, err)

	content, err := provider.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), content)

	content, err = provider.Get(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), content)
}
