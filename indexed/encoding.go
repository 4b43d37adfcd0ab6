package indexed

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/stratlog/go-stratlog/frontier"
)

// Id identifies a single logical stream. Each stream owns one Future and one
// Trace, and its own blob key namespaces within a store.
type Id uint64

// Update is one (key, value, time, diff) tuple.
type Update[K, V any] struct {
	Key  K           `cbor:"1,keyasint"`
	Val  V           `cbor:"2,keyasint"`
	Time frontier.Ts `cbor:"3,keyasint"`
	Diff int64       `cbor:"4,keyasint"`
}

// FutureBatch is an immutable batch of updates drained out of the write
// buffer, covering a half open interval of SeqNos.
type FutureBatch[K, V any] struct {
	Desc    frontier.Description[frontier.SeqNo] `cbor:"1,keyasint"`
	Updates []Update[K, V]                       `cbor:"2,keyasint"`
}

// TraceBatch is an immutable batch of compacted updates covering a half open
// interval of times. Desc.Since records the compaction frontier in effect
// when the batch was written.
type TraceBatch[K, V any] struct {
	Desc    frontier.Description[frontier.Ts] `cbor:"1,keyasint"`
	Updates []Update[K, V]                    `cbor:"2,keyasint"`
}

// FutureBatchMeta is the bookkeeping retained for one stored future batch:
// the blob key the payload was written under and the interval it covers.
type FutureBatchMeta struct {
	Key  string                               `cbor:"1,keyasint"`
	Desc frontier.Description[frontier.SeqNo] `cbor:"2,keyasint"`
}

// TraceBatchMeta is the bookkeeping retained for one stored trace batch.
type TraceBatchMeta struct {
	Key  string                            `cbor:"1,keyasint"`
	Desc frontier.Description[frontier.Ts] `cbor:"2,keyasint"`
}

// FutureMeta is the serializable state of a Future. Round tripping a Future
// through Meta and NewFuture reproduces an index indistinguishable by all
// public accessors.
type FutureMeta struct {
	Id         Id                `cbor:"1,keyasint"`
	TsLower    frontier.Ts       `cbor:"2,keyasint"`
	Batches    []FutureBatchMeta `cbor:"3,keyasint"`
	NextBlobID uint64            `cbor:"4,keyasint"`
}

// TraceMeta is the serializable state of a Trace.
type TraceMeta struct {
	Id         Id               `cbor:"1,keyasint"`
	Since      frontier.Ts      `cbor:"2,keyasint"`
	Batches    []TraceBatchMeta `cbor:"3,keyasint"`
	NextBlobID uint64           `cbor:"4,keyasint"`
}

// Check validates the invariants a well formed FutureMeta carries: batch
// intervals are contiguous and non overlapping starting at SeqNo 0.
func (m FutureMeta) Check() error {
	prev := frontier.SeqNo(0)
	for i, b := range m.Batches {
		if b.Key == "" {
			return fmt.Errorf("%w: future batch %d has no blob key", ErrBadMeta, i)
		}
		if err := b.Desc.Check(); err != nil {
			return fmt.Errorf("%w: future batch %d: %v", ErrBadMeta, i, err)
		}
		if b.Desc.Lower != prev {
			return fmt.Errorf(
				"%w: future batch %d covers %s, expected lower %d",
				ErrBadMeta, i, b.Desc, prev)
		}
		prev = b.Desc.Upper
	}
	return nil
}

// Check validates the invariants a well formed TraceMeta carries: batch
// intervals are contiguous and non overlapping starting at the minimum time,
// and since is strictly below the upper bound whenever batches exist.
func (m TraceMeta) Check() error {
	prev := frontier.TsMin
	for i, b := range m.Batches {
		if b.Key == "" {
			return fmt.Errorf("%w: trace batch %d has no blob key", ErrBadMeta, i)
		}
		if err := b.Desc.Check(); err != nil {
			return fmt.Errorf("%w: trace batch %d: %v", ErrBadMeta, i, err)
		}
		if b.Desc.Lower != prev {
			return fmt.Errorf(
				"%w: trace batch %d covers %s, expected lower %d",
				ErrBadMeta, i, b.Desc, prev)
		}
		prev = b.Desc.Upper
	}
	if len(m.Batches) > 0 && m.Since >= prev {
		return fmt.Errorf(
			"%w: since %d is not below the trace upper %d", ErrBadMeta, m.Since, prev)
	}
	return nil
}

func (m FutureMeta) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(m)
}

func (m *FutureMeta) UnmarshalBinary(data []byte) error {
	if err := cbor.Unmarshal(data, m); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMeta, err)
	}
	return m.Check()
}

func (m TraceMeta) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(m)
}

func (m *TraceMeta) UnmarshalBinary(data []byte) error {
	if err := cbor.Unmarshal(data, m); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMeta, err)
	}
	return m.Check()
}
