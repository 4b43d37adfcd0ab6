package frontier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescription(t *testing.T) {
	d, err := NewDescription[Ts](2, 8, 1)
	require.NoError(t, err)
	assert.Equal(t, Ts(2), d.Lower)
	assert.Equal(t, Ts(8), d.Upper)
	assert.Equal(t, Ts(1), d.Since)

	// The empty interval is valid.
	_, err = NewDescription[SeqNo](3, 3, 0)
	require.NoError(t, err)

	_, err = NewDescription[SeqNo](4, 3, 0)
	require.ErrorIs(t, err, ErrInvertedBounds)
}

func TestDescriptionContains(t *testing.T) {
	d := Description[Ts]{Lower: 2, Upper: 5}

	tests := []struct {
		pos  Ts
		want bool
	}{
		{1, false},
		{2, true}, // lower bound is closed
		{4, true},
		{5, false}, // upper bound is open
		{6, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Contains(tt.pos), "pos %d", tt.pos)
	}
}

func TestDescriptionString(t *testing.T) {
	d := Description[Ts]{Lower: 2, Upper: 5, Since: 1}
	assert.Equal(t, "[2, 5) since 1", d.String())
}
