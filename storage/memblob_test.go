package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewMemBlob()

	require.NoError(t, b.Set(ctx, "0-future-0", []byte("payload")))

	got, err := b.Get(ctx, "0-future-0")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	ok, err := b.Exists(ctx, "0-future-0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Exists(ctx, "0-future-1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 1, b.Len())
}

func TestMemBlobWriteOnce(t *testing.T) {
	ctx := context.Background()
	b := NewMemBlob()

	require.NoError(t, b.Set(ctx, "k", []byte("first")))
	require.ErrorIs(t, b.Set(ctx, "k", []byte("second")), ErrKeyExists)

	// Identical content does not make a rewrite acceptable either.
	require.ErrorIs(t, b.Set(ctx, "k", []byte("first")), ErrKeyExists)

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestMemBlobNotFound(t *testing.T) {
	_, err := NewMemBlob().Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemBlobEmptyKey(t *testing.T) {
	require.ErrorIs(t, NewMemBlob().Set(context.Background(), "", []byte("x")), ErrKeyEmpty)
}

func TestMemBlobIsolatesCallerBuffers(t *testing.T) {
	ctx := context.Background()
	b := NewMemBlob()

	value := []byte("stable")
	require.NoError(t, b.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("stable"), got)

	got[0] = 'Y'
	again, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("stable"), again)
}
