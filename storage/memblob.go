package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemBlob is an in process Blob for tests and single process embedding.
type MemBlob struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemBlob() *MemBlob {
	return &MemBlob{blobs: make(map[string][]byte)}
}

func (b *MemBlob) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[key]; ok {
		return fmt.Errorf("%w: %s", ErrKeyExists, key)
	}
	// Copy so later caller mutations can't alter what was stored.
	stored := make([]byte, len(value))
	copy(stored, value)
	b.blobs[key] = stored
	return nil
}

func (b *MemBlob) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	value := make([]byte, len(stored))
	copy(value, stored)
	return value, nil
}

func (b *MemBlob) Exists(ctx context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok, nil
}

// Len returns the number of stored blobs.
func (b *MemBlob) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}
