package indexed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlog/go-stratlog/frontier"
)

func futureDesc(lower, upper frontier.SeqNo) frontier.Description[frontier.SeqNo] {
	return frontier.Description[frontier.SeqNo]{Lower: lower, Upper: upper}
}

func traceDesc(lower, upper frontier.Ts) frontier.Description[frontier.Ts] {
	return frontier.Description[frontier.Ts]{Lower: lower, Upper: upper}
}

func TestFutureMetaCheck(t *testing.T) {
	tests := []struct {
		name string
		meta FutureMeta
		ok   bool
	}{
		{"empty", FutureMeta{Id: 1}, true},
		{"contiguous", FutureMeta{Batches: []FutureBatchMeta{
			{Key: "1-future-0", Desc: futureDesc(0, 3)},
			{Key: "1-future-1", Desc: futureDesc(3, 7)},
		}}, true},
		{"not starting at zero", FutureMeta{Batches: []FutureBatchMeta{
			{Key: "1-future-0", Desc: futureDesc(1, 3)},
		}}, false},
		{"gap", FutureMeta{Batches: []FutureBatchMeta{
			{Key: "1-future-0", Desc: futureDesc(0, 3)},
			{Key: "1-future-1", Desc: futureDesc(4, 7)},
		}}, false},
		{"overlap", FutureMeta{Batches: []FutureBatchMeta{
			{Key: "1-future-0", Desc: futureDesc(0, 3)},
			{Key: "1-future-1", Desc: futureDesc(2, 7)},
		}}, false},
		{"inverted interval", FutureMeta{Batches: []FutureBatchMeta{
			{Key: "1-future-0", Desc: futureDesc(0, 3)},
			{Key: "1-future-1", Desc: frontier.Description[frontier.SeqNo]{Lower: 3, Upper: 1}},
		}}, false},
		{"missing key", FutureMeta{Batches: []FutureBatchMeta{
			{Desc: futureDesc(0, 3)},
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Check()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBadMeta)
			}
		})
	}
}

func TestTraceMetaCheck(t *testing.T) {
	tests := []struct {
		name string
		meta TraceMeta
		ok   bool
	}{
		{"empty", TraceMeta{Id: 1}, true},
		{"contiguous", TraceMeta{Since: 2, Batches: []TraceBatchMeta{
			{Key: "1-trace-0", Desc: traceDesc(0, 5)},
			{Key: "1-trace-1", Desc: traceDesc(5, 9)},
		}}, true},
		{"since at upper", TraceMeta{Since: 9, Batches: []TraceBatchMeta{
			{Key: "1-trace-0", Desc: traceDesc(0, 9)},
		}}, false},
		{"since past upper", TraceMeta{Since: 12, Batches: []TraceBatchMeta{
			{Key: "1-trace-0", Desc: traceDesc(0, 9)},
		}}, false},
		{"gap", TraceMeta{Batches: []TraceBatchMeta{
			{Key: "1-trace-0", Desc: traceDesc(0, 5)},
			{Key: "1-trace-1", Desc: traceDesc(6, 9)},
		}}, false},
		{"not starting at minimum", TraceMeta{Batches: []TraceBatchMeta{
			{Key: "1-trace-0", Desc: traceDesc(2, 5)},
		}}, false},
		{"missing key", TraceMeta{Batches: []TraceBatchMeta{
			{Desc: traceDesc(0, 5)},
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Check()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBadMeta)
			}
		})
	}
}

func TestMetaUnmarshalRejectsBadRecords(t *testing.T) {
	var fm FutureMeta
	require.ErrorIs(t, fm.UnmarshalBinary([]byte("not cbor at all")), ErrBadMeta)

	// Structurally valid CBOR that violates the bookkeeping invariants is
	// also refused, a rehydrated index must never start broken.
	bad := FutureMeta{Batches: []FutureBatchMeta{
		{Key: "1-future-0", Desc: futureDesc(2, 4)},
	}}
	encoded, err := bad.MarshalBinary()
	require.NoError(t, err)
	require.ErrorIs(t, fm.UnmarshalBinary(encoded), ErrBadMeta)

	var tm TraceMeta
	require.ErrorIs(t, tm.UnmarshalBinary([]byte{0xff, 0x00}), ErrBadMeta)
}

func TestCorruptBatchPayload(t *testing.T) {
	tc := NewTestContext[string, string](t, "TestCorruptBatchPayload")
	ctx := context.Background()

	require.NoError(t, tc.Blob.Set(ctx, "0-future-0", []byte("junk, not snappy")))
	_, err := tc.Cache.GetFutureBatch(ctx, "0-future-0")
	require.ErrorIs(t, err, ErrBatchCorrupt)

	require.NoError(t, tc.Blob.Set(ctx, "0-trace-0", []byte{0x01, 0x02}))
	_, err = tc.Cache.GetTraceBatch(ctx, "0-trace-0")
	require.ErrorIs(t, err, ErrBatchCorrupt)
}
