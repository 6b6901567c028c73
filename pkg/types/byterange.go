package types

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidRange is returned when a range would have start > end or a negative bound.
	ErrInvalidRange = errors.New("invalid byte range")
	// ErrRangeOverflow is returned when translating a range would overflow int.
	ErrRangeOverflow = errors.New("byte range offset overflows")
)

// ByteRange is byte range [Start, End) - half-open interval.
// Matches are reported relative to the buffer they were found in; use
// Offset to translate them into another coordinate space.
type ByteRange struct {
	Start int
	End   int
}

// NewByteRange creates a range, enforcing 0 <= start <= end.
func NewByteRange(start, end int) (ByteRange, error) {
	if start < 0 || end < 0 || start > end {
		return ByteRange{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, start, end)
	}
	return ByteRange{Start: start, End: end}, nil
}

// MustByteRange is like NewByteRange but panics on an invalid range.
func MustByteRange(start, end int) ByteRange {
	r, err := NewByteRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// ZeroRange returns the empty range positioned at offset.
func ZeroRange(offset int) ByteRange {
	return ByteRange{Start: offset, End: offset}
}

// Len returns the number of bytes covered.
func (r ByteRange) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers no bytes.
func (r ByteRange) IsEmpty() bool {
	return r.Start == r.End
}

// Contains reports whether offset lies inside the range.
func (r ByteRange) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Offset translates both bounds by amount. It fails rather than wrapping
// when either bound would overflow or become negative.
func (r ByteRange) Offset(amount int) (ByteRange, error) {
	start, ok := addInt(r.Start, amount)
	if !ok {
		return ByteRange{}, fmt.Errorf("%w: %d + %d", ErrRangeOverflow, r.Start, amount)
	}
	end, ok := addInt(r.End, amount)
	if !ok {
		return ByteRange{}, fmt.Errorf("%w: %d + %d", ErrRangeOverflow, r.End, amount)
	}
	if start < 0 {
		return ByteRange{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, start, end)
	}
	return ByteRange{Start: start, End: end}, nil
}

// Slice returns buf[r.Start:r.End] without copying.
func (r ByteRange) Slice(buf []byte) []byte {
	return buf[r.Start:r.End]
}

func (r ByteRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

func addInt(a, b int) (int, bool) {
	if b > 0 && a > math.MaxInt-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt-b {
		return 0, false
	}
	return a + b, true
}
