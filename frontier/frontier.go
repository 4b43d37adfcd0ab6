package frontier

import (
	"cmp"
	"errors"
	"fmt"
)

// SeqNo is the strictly monotonic counter assigned by the single writer as it
// drains entries towards the recent tier. It orders writes, and is an entirely
// distinct domain from the logical times carried by the updates themselves.
type SeqNo uint64

// Ts is the totally ordered logical time attached to every update.
//
// The general progress tracking formulation bounds sets of times with an
// antichain of pairwise incomparable elements. Because Ts is totally ordered,
// every antichain here collapses to a single scalar and a frontier is just a
// Ts or SeqNo value. A closed lower frontier f admits t when f <= t; an open
// upper frontier f admits t when t < f.
type Ts uint64

// TsMin is the minimum logical time, and the upper bound reported by an empty
// historical index.
const TsMin Ts = 0

var ErrInvertedBounds = errors.New("interval upper bound is below its lower bound")

// Description records the half open interval [Lower, Upper) of positions a
// batch covers, and the compaction frontier (Since) that was in effect when
// the batch was written. For recent tier batches the positions are SeqNos and
// Since is always zero; for historical batches they are Ts.
type Description[T cmp.Ordered] struct {
	Lower T `cbor:"1,keyasint"`
	Upper T `cbor:"2,keyasint"`
	Since T `cbor:"3,keyasint"`
}

// NewDescription returns the description of a batch covering [lower, upper)
// written while since was the compaction frontier.
func NewDescription[T cmp.Ordered](lower, upper, since T) (Description[T], error) {
	d := Description[T]{Lower: lower, Upper: upper, Since: since}
	return d, d.Check()
}

// Check returns ErrInvertedBounds if the interval bounds are out of order.
// The empty interval [x, x) is valid.
func (d Description[T]) Check() error {
	if d.Upper < d.Lower {
		return fmt.Errorf("%w: [%v, %v)", ErrInvertedBounds, d.Lower, d.Upper)
	}
	return nil
}

// Contains reports whether pos falls inside the half open interval.
func (d Description[T]) Contains(pos T) bool {
	return d.Lower <= pos && pos < d.Upper
}

func (d Description[T]) String() string {
	return fmt.Sprintf("[%v, %v) since %v", d.Lower, d.Upper, d.Since)
}
