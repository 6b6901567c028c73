package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteRange(t *testing.T) {
	r, err := NewByteRange(2, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Len())
	assert.False(t, r.IsEmpty())
	assert.Equal(t, "[2, 7)", r.String())

	_, err = NewByteRange(7, 2)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewByteRange(-1, 2)
	assert.ErrorIs(t, err, ErrInvalidRange)

	assert.Panics(t, func() { MustByteRange(3, 1) })
}

func TestByteRange_Zero(t *testing.T) {
	r := ZeroRange(4)
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Contains(4))
}

func TestByteRange_Offset(t *testing.T) {
	r := MustByteRange(1, 3)

	shifted, err := r.Offset(10)
	require.NoError(t, err)
	assert.Equal(t, ByteRange{Start: 11, End: 13}, shifted)

	back, err := shifted.Offset(-10)
	require.NoError(t, err)
	assert.Equal(t, r, back)

	_, err = MustByteRange(0, math.MaxInt-1).Offset(2)
	assert.ErrorIs(t, err, ErrRangeOverflow)

	_, err = r.Offset(-2)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestByteRange_Slice(t *testing.T) {
	buf := []byte("INFO ERROR z")
	r := MustByteRange(5, 10)
	assert.Equal(t, "ERROR", string(r.Slice(buf)))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(10))
}
