// Package storage provides the write-once blob contract the indexed tiers are
// built over, together with memory, local file, and azure blob backed
// implementations.
//
// The contract is deliberately narrow. Keys are opaque strings constructed by
// the caller, a key is written exactly once, and a read of a previously
// written key always returns byte identical content. Nothing here ever
// overwrites or deletes.
package storage

import "context"

// Blob is a durable, write-once key to bytes store.
//
// Set fails with ErrKeyExists if the key has been written before, regardless
// of content. Get fails with ErrKeyNotFound for unwritten keys. Implementations
// must treat stored values as immutable once Set returns.
type Blob interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}
