package indexed

import (
	"context"
	"fmt"

	"github.com/stratlog/go-stratlog/frontier"
)

// Trace is the historical tier: an append only sequence of batches of
// compacted updates, indexed by the time interval each batch covers, with a
// monotonically advancing compaction frontier (since).
//
// Invariants:
//   - batch intervals are contiguous and non overlapping, starting at the
//     minimum time
//   - since never decreases, and stays strictly below the current upper bound
//
// Below since, distinct timestamps may have been merged together and can no
// longer be told apart on read. Advancing since is bookkeeping only: the
// physical merge that reclaims the space it licenses is a separate pass that
// does not exist yet.
//
// A Trace is single writer in the same sense as a Future.
type Trace[K, V any] struct {
	id         Id
	nextBlobID uint64
	since      frontier.Ts
	batches    []TraceBatchMeta
}

// NewTrace returns a Trace re-instantiated from previously serialized state.
// A fresh index is the zero TraceMeta with just the Id set.
func NewTrace[K, V any](meta TraceMeta) *Trace[K, V] {
	return &Trace[K, V]{
		id:         meta.Id,
		nextBlobID: meta.NextBlobID,
		since:      meta.Since,
		batches:    append([]TraceBatchMeta(nil), meta.Batches...),
	}
}

// Meta returns the serializable state of this Trace.
func (t *Trace[K, V]) Meta() TraceMeta {
	return TraceMeta{
		Id:         t.id,
		Since:      t.since,
		Batches:    append([]TraceBatchMeta(nil), t.batches...),
		NextBlobID: t.nextBlobID,
	}
}

// Id returns the stream this trace belongs to.
func (t *Trace[K, V]) Id() Id { return t.id }

// TsUpper returns the open upper bound on the times of contained updates: the
// upper bound of the last batch, or the minimum time for an empty trace.
func (t *Trace[K, V]) TsUpper() frontier.Ts {
	if len(t.batches) == 0 {
		return frontier.TsMin
	}
	return t.batches[len(t.batches)-1].Desc.Upper
}

// Since returns the compaction frontier: the time below which distinct
// timestamps may already have been merged together.
func (t *Trace[K, V]) Since() frontier.Ts { return t.since }

func (t *Trace[K, V]) newBlobKey() string {
	key := fmt.Sprintf("%d-trace-%d", t.id, t.nextBlobID)
	t.nextBlobID++
	return key
}

// Append writes batch to blob storage and logically adds its updates to this
// trace. The batch must cover exactly the interval starting at TsUpper. On
// error the trace is unchanged.
func (t *Trace[K, V]) Append(ctx context.Context, batch *TraceBatch[K, V], blobs *BlobCache[K, V]) error {
	if batch.Desc.Lower != t.TsUpper() {
		return fmt.Errorf(
			"%w: trace upper is %d, batch covers %s",
			ErrNonContiguousAppend, t.TsUpper(), batch.Desc)
	}
	key := t.newBlobKey()
	if err := blobs.SetTraceBatch(ctx, key, batch); err != nil {
		return err
	}
	t.batches = append(t.batches, TraceBatchMeta{Key: key, Desc: batch.Desc})
	return nil
}

// Snapshot returns a consistent read of all the updates in this trace. No
// time filtering is applied; callers wanting a bounded view filter after
// draining.
func (t *Trace[K, V]) Snapshot(ctx context.Context, blobs *BlobCache[K, V]) (*TraceSnapshot[K, V], error) {
	batches := make([]*TraceBatch[K, V], 0, len(t.batches))
	for _, meta := range t.batches {
		batch, err := blobs.GetTraceBatch(ctx, meta.Key)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return &TraceSnapshot[K, V]{
		TsUpper: t.TsUpper(),
		Since:   t.since,
		batches: batches,
	}, nil
}

// AllowCompaction advances the since frontier. The new frontier must strictly
// advance and stay strictly below TsUpper; compaction may never be licensed
// for data that has not been written. This only raises the frontier a future
// compactor is permitted to use, no merge happens here.
func (t *Trace[K, V]) AllowCompaction(since frontier.Ts) error {
	if since >= t.TsUpper() {
		return fmt.Errorf(
			"%w: trace upper is %d, requested since %d",
			ErrCompactionNotBelowUpper, t.TsUpper(), since)
	}
	if since <= t.since {
		return fmt.Errorf(
			"%w: since is %d, requested %d",
			ErrNonAdvancingCompaction, t.since, since)
	}
	t.since = since
	return nil
}

// TraceSnapshot is a consistent snapshot of the data that was in a Trace when
// it was taken.
type TraceSnapshot[K, V any] struct {
	// TsUpper is an open upper bound on the times of contained updates.
	TsUpper frontier.Ts
	// Since is the compaction frontier the trace held when the snapshot was
	// taken. Updates below it may carry merged, indistinguishable times.
	Since   frontier.Ts
	batches []*TraceBatch[K, V]
}

// Read drains one batch into buf and reports whether batches remain. Batches
// drain most recently appended first.
func (s *TraceSnapshot[K, V]) Read(buf *[]Update[K, V]) bool {
	if len(s.batches) == 0 {
		return false
	}
	batch := s.batches[len(s.batches)-1]
	s.batches = s.batches[:len(s.batches)-1]
	*buf = append(*buf, batch.Updates...)
	return true
}
