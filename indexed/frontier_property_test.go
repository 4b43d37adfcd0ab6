package indexed

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratlog/go-stratlog/frontier"
)

// Randomized sequences of frontier movements: regression attempts must always
// be rejected and the observed frontier must never move backwards.
func TestFutureTruncateNeverRegresses(t *testing.T) {
	r := rand.New(rand.NewSource(0x5eed))
	f := NewFuture[string, string](FutureMeta{Id: 0})

	cur := frontier.Ts(0)
	for i := 0; i < 1000; i++ {
		next := frontier.Ts(r.Intn(200))
		err := f.Truncate(next)
		if next < cur {
			require.ErrorIs(t, err, ErrTsLowerRegression, "step %d", i)
		} else {
			require.NoError(t, err, "step %d", i)
			cur = next
		}
		assert.Equal(t, cur, f.TsLower(), "step %d", i)
	}
}

func TestTraceAllowCompactionNeverRegresses(t *testing.T) {
	const upper = frontier.Ts(100)

	r := rand.New(rand.NewSource(0xf40))
	tr := NewTrace[string, string](TraceMeta{
		Id: 0,
		Batches: []TraceBatchMeta{{
			Key:  "0-trace-0",
			Desc: frontier.Description[frontier.Ts]{Lower: 0, Upper: upper},
		}},
	})

	cur := frontier.Ts(0)
	for i := 0; i < 1000; i++ {
		next := frontier.Ts(r.Intn(120))
		err := tr.AllowCompaction(next)
		switch {
		case next >= upper:
			require.ErrorIs(t, err, ErrCompactionNotBelowUpper, "step %d", i)
		case next <= cur:
			require.ErrorIs(t, err, ErrNonAdvancingCompaction, "step %d", i)
		default:
			require.NoError(t, err, "step %d", i)
			cur = next
		}
		assert.Equal(t, cur, tr.Since(), "step %d", i)
	}
}
