// Package lineindex maps zero-based line numbers to byte offsets in a
// buffer, usually the bytes of a memory mapping.
//
// Entry k of the index is the offset of the newline that terminates line k.
// When the buffer does not end with a newline the final entry is len(data),
// a virtual terminator for the last line. Line k therefore spans
// [entry(k-1)+1, entry(k)), with line 0 starting at offset 0. Carriage
// returns are not stripped.
//
// An Index borrows the buffer it was built from. When that buffer is a
// memory mapping the Index must not be used after the mapping is closed.
package lineindex

import (
	"bytes"
	"sort"

	"github.com/praetorian-inc/logmap/pkg/types"
)

// Index is an immutable line index over a byte buffer.
type Index struct {
	data  []byte
	terms []int // strictly increasing terminator offsets
}

// Build scans data once and returns its line index. Buffers at or above the
// configured parallel threshold are scanned in parallel chunks.
func Build(data []byte, opts ...Option) *Index {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var terms []int
	if cfg.parallelThreshold > 0 && len(data) >= cfg.parallelThreshold && cfg.workers > 1 {
		terms = scanParallel(data, cfg.workers)
	} else {
		terms = scan(data, 0, nil)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		terms = append(terms, len(data))
	}

	if cfg.metrics != nil {
		cfg.metrics.ObserveIndex(len(data), len(terms))
	}

	return &Index{data: data, terms: terms}
}

// scan appends the absolute offsets of every newline in chunk to dst;
// base is chunk's offset in the whole buffer.
func scan(chunk []byte, base int, dst []int) []int {
	pos := 0
	for {
		i := bytes.IndexByte(chunk[pos:], '\n')
		if i < 0 {
			return dst
		}
		dst = append(dst, base+pos+i)
		pos += i + 1
	}
}

// LineCount returns the number of lines.
func (idx *Index) LineCount() int {
	return len(idx.terms)
}

// Len returns the length of the indexed buffer.
func (idx *Index) Len() int {
	return len(idx.data)
}

// Terminator returns the stored entry for line n: the offset of its newline,
// or len(data) for an unterminated last line.
func (idx *Index) Terminator(n int) (int, bool) {
	if n < 0 || n >= len(idx.terms) {
		return 0, false
	}
	return idx.terms[n], true
}

// LineRange returns the byte range of line n, excluding its terminator.
func (idx *Index) LineRange(n int) (types.ByteRange, bool) {
	if n < 0 || n >= len(idx.terms) {
		return types.ByteRange{}, false
	}
	start := 0
	if n > 0 {
		start = idx.terms[n-1] + 1
	}
	return types.ByteRange{Start: start, End: idx.terms[n]}, true
}

// Line returns the text of line n without copying.
func (idx *Index) Line(n int) ([]byte, bool) {
	r, ok := idx.LineRange(n)
	if !ok {
		return nil, false
	}
	return r.Slice(idx.data), true
}

// LineRanges returns the ranges of up to count consecutive lines starting at
// line n, clipped at the last line. Out-of-range n yields an empty result.
func (idx *Index) LineRanges(n, count int) []types.ByteRange {
	if n < 0 || n >= len(idx.terms) || count <= 0 {
		return nil
	}
	end := len(idx.terms)
	if count < end-n {
		end = n + count
	}
	ranges := make([]types.ByteRange, 0, end-n)
	for i := n; i < end; i++ {
		r, _ := idx.LineRange(i)
		ranges = append(ranges, r)
	}
	return ranges
}

// Lines is LineRanges resolved to line text.
func (idx *Index) Lines(n, count int) [][]byte {
	ranges := idx.LineRanges(n, count)
	if len(ranges) == 0 {
		return nil
	}
	lines := make([][]byte, len(ranges))
	for i, r := range ranges {
		lines[i] = r.Slice(idx.data)
	}
	return lines
}

// LineOf returns the line containing the absolute byte offset. A newline
// byte belongs to the line it terminates.
func (idx *Index) LineOf(offset int) (int, bool) {
	if offset < 0 || offset >= len(idx.data) {
		return 0, false
	}
	n := sort.SearchInts(idx.terms, offset)
	if n >= len(idx.terms) {
		return 0, false
	}
	return n, true
}
