package indexed

import (
	"context"
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/fxamacker/cbor/v2"
	"github.com/golang/snappy"

	"github.com/stratlog/go-stratlog/storage"
)

// BlobCache mediates all batch traffic between the tiers and a storage.Blob.
//
// Payloads are stored as snappy compressed CBOR. Decoded batches are cached
// and handed out as shared pointers: the same *FutureBatch a Set published is
// what every later Get and every snapshot holds. Since batches are immutable
// after first publish, sharing is safe and a snapshot stays valid for as long
// as anything holds it, regardless of writer progress.
//
// The cache never evicts. Eviction only becomes meaningful alongside physical
// compaction, which is out of scope here.
type BlobCache[K, V any] struct {
	log  logger.Logger
	blob storage.Blob

	mu     sync.Mutex
	future map[string]*FutureBatch[K, V]
	trace  map[string]*TraceBatch[K, V]
}

func NewBlobCache[K, V any](log logger.Logger, blob storage.Blob) *BlobCache[K, V] {
	return &BlobCache[K, V]{
		log:    log,
		blob:   blob,
		future: make(map[string]*FutureBatch[K, V]),
		trace:  make(map[string]*TraceBatch[K, V]),
	}
}

func encodeBatch(batch any) ([]byte, error) {
	encoded, err := cbor.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return snappy.Encode(nil, encoded), nil
}

func decodeBatch(data []byte, batch any) error {
	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBatchCorrupt, err)
	}
	if err := cbor.Unmarshal(decoded, batch); err != nil {
		return fmt.Errorf("%w: %v", ErrBatchCorrupt, err)
	}
	return nil
}

// SetFutureBatch writes batch under key and publishes it to the cache. The
// batch must not be mutated by the caller afterwards.
func (c *BlobCache[K, V]) SetFutureBatch(ctx context.Context, key string, batch *FutureBatch[K, V]) error {
	if err := batch.Desc.Check(); err != nil {
		return err
	}
	value, err := encodeBatch(batch)
	if err != nil {
		return err
	}
	if err := c.blob.Set(ctx, key, value); err != nil {
		return err
	}
	c.log.Debugf("blobcache: wrote future batch %s %s (%d updates)",
		key, batch.Desc, len(batch.Updates))
	c.mu.Lock()
	c.future[key] = batch
	c.mu.Unlock()
	return nil
}

// GetFutureBatch returns the shared decoded batch stored under key.
func (c *BlobCache[K, V]) GetFutureBatch(ctx context.Context, key string) (*FutureBatch[K, V], error) {
	c.mu.Lock()
	batch, ok := c.future[key]
	c.mu.Unlock()
	if ok {
		return batch, nil
	}

	value, err := c.blob.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	batch = &FutureBatch[K, V]{}
	if err := decodeBatch(value, batch); err != nil {
		return nil, fmt.Errorf("future batch %s: %w", key, err)
	}
	c.log.Debugf("blobcache: fetched future batch %s %s", key, batch.Desc)

	c.mu.Lock()
	// A concurrent reader may have fetched first; keep whichever pointer won
	// so all holders share one copy.
	if cached, ok := c.future[key]; ok {
		batch = cached
	} else {
		c.future[key] = batch
	}
	c.mu.Unlock()
	return batch, nil
}

// SetTraceBatch writes batch under key and publishes it to the cache. The
// batch must not be mutated by the caller afterwards.
func (c *BlobCache[K, V]) SetTraceBatch(ctx context.Context, key string, batch *TraceBatch[K, V]) error {
	if err := batch.Desc.Check(); err != nil {
		return err
	}
	value, err := encodeBatch(batch)
	if err != nil {
		return err
	}
	if err := c.blob.Set(ctx, key, value); err != nil {
		return err
	}
	c.log.Debugf("blobcache: wrote trace batch %s %s (%d updates)",
		key, batch.Desc, len(batch.Updates))
	c.mu.Lock()
	c.trace[key] = batch
	c.mu.Unlock()
	return nil
}

// GetTraceBatch returns the shared decoded batch stored under key.
func (c *BlobCache[K, V]) GetTraceBatch(ctx context.Context, key string) (*TraceBatch[K, V], error) {
	c.mu.Lock()
	batch, ok := c.trace[key]
	c.mu.Unlock()
	if ok {
		return batch, nil
	}

	value, err := c.blob.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	batch = &TraceBatch[K, V]{}
	if err := decodeBatch(value, batch); err != nil {
		return nil, fmt.Errorf("trace batch %s: %w", key, err)
	}
	c.log.Debugf("blobcache: fetched trace batch %s %s", key, batch.Desc)

	c.mu.Lock()
	if cached, ok := c.trace[key]; ok {
		batch = cached
	} else {
		c.trace[key] = batch
	}
	c.mu.Unlock()
	return batch, nil
}
