package indexed

import (
	"context"
	"fmt"

	"github.com/stratlog/go-stratlog/frontier"
)

// Future is the recent tier: an append only sequence of batches of updates
// that have been drained out of the write buffer but not yet sealed into the
// Trace, indexed by the SeqNo interval each batch covers.
//
// Invariants:
//   - batch intervals are contiguous and non overlapping, starting at SeqNo 0
//   - every contained update's time is at or after ts_lower (checked on
//     append unless constructed WithoutTimeBoundsCheck)
//
// A Future is single writer: Append and Truncate must be serialized by the
// caller. Snapshots may be taken at any time relative to the writer.
type Future[K, V any] struct {
	id Id
	// next counter value used to mint a blob key for this future.
	nextBlobID uint64
	// Closed lower bound on contained update times. When the orchestrator
	// seals a time, only data strictly before it moves to the trace.
	tsLower frontier.Ts
	batches []FutureBatchMeta
	opts    FutureOptions
}

// NewFuture returns a Future re-instantiated from previously serialized
// state. A fresh index is the zero FutureMeta with just the Id set.
func NewFuture[K, V any](meta FutureMeta, opts ...FutureOption) *Future[K, V] {
	f := &Future[K, V]{
		id:         meta.Id,
		nextBlobID: meta.NextBlobID,
		tsLower:    meta.TsLower,
		batches:    append([]FutureBatchMeta(nil), meta.Batches...),
	}
	for _, o := range opts {
		o(&f.opts)
	}
	return f
}

// Meta returns the serializable state of this Future.
func (f *Future[K, V]) Meta() FutureMeta {
	return FutureMeta{
		Id:         f.id,
		TsLower:    f.tsLower,
		Batches:    append([]FutureBatchMeta(nil), f.batches...),
		NextBlobID: f.nextBlobID,
	}
}

// Id returns the stream this future belongs to.
func (f *Future[K, V]) Id() Id { return f.id }

// TsLower returns the closed lower bound on contained update times.
func (f *Future[K, V]) TsLower() frontier.Ts { return f.tsLower }

// SeqNoUpper returns the open upper bound on the seqnos of contained updates:
// the upper bound of the last batch, or SeqNo 0 for an empty future.
func (f *Future[K, V]) SeqNoUpper() frontier.SeqNo {
	if len(f.batches) == 0 {
		return frontier.SeqNo(0)
	}
	return f.batches[len(f.batches)-1].Desc.Upper
}

func (f *Future[K, V]) newBlobKey() string {
	key := fmt.Sprintf("%d-future-%d", f.id, f.nextBlobID)
	f.nextBlobID++
	return key
}

// Append writes batch to blob storage and logically adds its updates to this
// future. The batch must cover exactly the interval starting at SeqNoUpper.
// On error the future is unchanged.
func (f *Future[K, V]) Append(ctx context.Context, batch *FutureBatch[K, V], blobs *BlobCache[K, V]) error {
	if batch.Desc.Lower != f.SeqNoUpper() {
		return fmt.Errorf(
			"%w: future upper is %d, batch covers %s",
			ErrNonContiguousAppend, f.SeqNoUpper(), batch.Desc)
	}
	if !f.opts.skipTimeBoundsCheck {
		// Data reaching this future was drained from the buffer, and the
		// orchestrator must not buffer anything below ts_lower; an update
		// below it here is a bug in the caller.
		for _, u := range batch.Updates {
			if u.Time < f.tsLower {
				return fmt.Errorf(
					"%w: update at time %d, ts_lower is %d",
					ErrUpdateBeforeTsLower, u.Time, f.tsLower)
			}
		}
	}

	key := f.newBlobKey()
	if err := blobs.SetFutureBatch(ctx, key, batch); err != nil {
		return err
	}
	f.batches = append(f.batches, FutureBatchMeta{Key: key, Desc: batch.Desc})
	return nil
}

// Snapshot returns a consistent read of the updates in this future with times
// in [tsLower, tsUpper); a nil tsUpper leaves the read unbounded above. The
// filter is applied per update as the snapshot drains, not at fetch time.
func (f *Future[K, V]) Snapshot(
	ctx context.Context, tsLower frontier.Ts, tsUpper *frontier.Ts, blobs *BlobCache[K, V],
) (*FutureSnapshot[K, V], error) {

	batches := make([]*FutureBatch[K, V], 0, len(f.batches))
	for _, meta := range f.batches {
		batch, err := blobs.GetFutureBatch(ctx, meta.Key)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return &FutureSnapshot[K, V]{
		SeqNoUpper: f.SeqNoUpper(),
		TsLower:    tsLower,
		TsUpper:    tsUpper,
		batches:    batches,
	}, nil
}

// Truncate advances ts_lower, logically removing all updates before it. The
// bound may not regress; re-asserting the current bound is a no-op. No stored
// data is removed: reclaiming the space below ts_lower belongs to a physical
// compaction pass that does not exist yet, and until it runs every previously
// appended batch remains stored and readable.
func (f *Future[K, V]) Truncate(newTsLower frontier.Ts) error {
	if newTsLower < f.tsLower {
		return fmt.Errorf(
			"%w: from %d to %d", ErrTsLowerRegression, f.tsLower, newTsLower)
	}
	f.tsLower = newTsLower
	return nil
}

// FutureSnapshot is a consistent snapshot of the data that was in a Future
// when it was taken. See Snapshot for the drain contract.
type FutureSnapshot[K, V any] struct {
	// SeqNoUpper is an open upper bound on the seqnos of contained updates.
	SeqNoUpper frontier.SeqNo
	// TsLower is the closed lower bound the read was requested with.
	TsLower frontier.Ts
	// TsUpper, when non nil, is the open upper bound the read was requested
	// with.
	TsUpper *frontier.Ts
	batches []*FutureBatch[K, V]
}

// Read drains one batch into buf, filtering each update against the requested
// time window, and reports whether batches remain. Batches drain most
// recently appended first.
func (s *FutureSnapshot[K, V]) Read(buf *[]Update[K, V]) bool {
	if len(s.batches) == 0 {
		return false
	}
	batch := s.batches[len(s.batches)-1]
	s.batches = s.batches[:len(s.batches)-1]
	for _, u := range batch.Updates {
		if u.Time < s.TsLower {
			continue
		}
		if s.TsUpper != nil && u.Time >= *s.TsUpper {
			continue
		}
		*buf = append(*buf, u)
	}
	return true
}
