package lineindex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/praetorian-inc/logmap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineStrings(lines [][]byte) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}
	return out
}

func TestBuild_NoTrailingNewline(t *testing.T) {
	idx := Build([]byte("a\nbb\nccc"))

	require.Equal(t, 3, idx.LineCount())
	assert.Equal(t, []string{"a", "bb"}, lineStrings(idx.Lines(0, 2)))
	assert.Equal(t, []string{"ccc"}, lineStrings(idx.Lines(2, 5)))

	assert.Equal(t, []types.ByteRange{{Start: 0, End: 1}, {Start: 2, End: 4}}, idx.LineRanges(0, 2))
	assert.Equal(t, []types.ByteRange{{Start: 5, End: 8}}, idx.LineRanges(2, 5))

	term, ok := idx.Terminator(2)
	require.True(t, ok)
	assert.Equal(t, 8, term, "unterminated last line uses len(data)")
}

func TestBuild_TrailingNewline(t *testing.T) {
	idx := Build([]byte("a\nbb\n"))

	require.Equal(t, 2, idx.LineCount())
	line, ok := idx.Line(1)
	require.True(t, ok)
	assert.Equal(t, "bb", string(line))
}

func TestBuild_NoNewline(t *testing.T) {
	idx := Build([]byte("single line"))

	require.Equal(t, 1, idx.LineCount())
	line, ok := idx.Line(0)
	require.True(t, ok)
	assert.Equal(t, "single line", string(line))
}

func TestBuild_Empty(t *testing.T) {
	idx := Build(nil)
	assert.Equal(t, 0, idx.LineCount())
	assert.Empty(t, idx.LineRanges(0, 1))
	_, ok := idx.Line(0)
	assert.False(t, ok)
}

func TestBuild_EmptyLinesAndCarriageReturns(t *testing.T) {
	idx := Build([]byte("\n\r\nx\r\n"))

	require.Equal(t, 3, idx.LineCount())
	assert.Equal(t, []string{"", "\r", "x\r"}, lineStrings(idx.Lines(0, 3)))
}

func TestIndex_OutOfRange(t *testing.T) {
	idx := Build([]byte("a\nb"))

	assert.Empty(t, idx.LineRanges(2, 1))
	assert.Empty(t, idx.LineRanges(-1, 1))
	assert.Empty(t, idx.LineRanges(0, 0))
	assert.Nil(t, idx.Lines(5, 1))

	_, ok := idx.LineRange(2)
	assert.False(t, ok)
	_, ok = idx.Terminator(-1)
	assert.False(t, ok)
}

func TestIndex_LineOf(t *testing.T) {
	data := []byte("a\nbb\nccc")
	idx := Build(data)

	tests := []struct {
		offset int
		line   int
		ok     bool
	}{
		{0, 0, true},
		{1, 0, true}, // newline belongs to the line it terminates
		{2, 1, true},
		{4, 1, true},
		{5, 2, true},
		{7, 2, true},
		{8, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		line, ok := idx.LineOf(tt.offset)
		assert.Equal(t, tt.ok, ok, "offset %d", tt.offset)
		if tt.ok {
			assert.Equal(t, tt.line, line, "offset %d", tt.offset)
		}
	}
}

func TestIndex_StrictlyIncreasing(t *testing.T) {
	data := []byte(strings.Repeat("x\n\n yz\n", 50) + "tail")
	idx := Build(data)

	prev := -1
	for i := 0; i < idx.LineCount(); i++ {
		term, ok := idx.Terminator(i)
		require.True(t, ok)
		assert.Greater(t, term, prev)
		prev = term
	}
}

func TestLineCount_MatchesNewlineCount(t *testing.T) {
	inputs := []string{
		"x",
		"x\n",
		"\n",
		"a\nb\nc",
		"a\nb\nc\n",
		"\n\n\n",
		"no newline at all but long " + strings.Repeat("z", 1000),
	}
	for _, in := range inputs {
		data := []byte(in)
		newlines := bytes.Count(data, []byte{'\n'})
		want := newlines
		if data[len(data)-1] != '\n' {
			want++
		}
		assert.Equal(t, want, Build(data).LineCount(), "input %q", in)
	}
}

type recorder struct {
	bytes, lines int
}

func (r *recorder) ObserveIndex(bytes, lines int) {
	r.bytes = bytes
	r.lines = lines
}

func TestBuild_Recorder(t *testing.T) {
	rec := &recorder{}
	Build([]byte("a\nb\n"), WithRecorder(rec))
	assert.Equal(t, 4, rec.bytes)
	assert.Equal(t, 2, rec.lines)
}
