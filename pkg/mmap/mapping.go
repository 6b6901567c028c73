package mmap

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/praetorian-inc/logmap/pkg/types"
)

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

// Mapping is a read-only view of a byte range of a file.
type Mapping struct {
	// region is the padded, aligned view exactly as the platform returned it.
	region []byte
	// data is region[delta : delta+length].
	data   []byte
	offset int64
	file   *os.File // non-nil when the Mapping owns the file
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the whole file at path. The file stays open until Close.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	m, err := OpenFile(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return m, nil
}

// OpenFile maps the first size bytes of f and takes ownership of f: Close
// closes it. On error the caller keeps f.
func OpenFile(f *os.File, size int64) (*Mapping, error) {
	if size < 0 || size > int64(maxLen) {
		return nil, &Error{Op: "open " + f.Name(), Err: ErrInvalidSize}
	}
	m, err := Map(f, 0, int(size))
	if err != nil {
		return nil, err
	}
	m.file = f
	return m, nil
}

// Map maps [offset, offset+length) of f read-only. The caller keeps
// ownership of f; the mapping stays valid after f is closed.
func Map(f *os.File, offset int64, length int) (*Mapping, error) {
	if offset < 0 {
		return nil, &Error{Op: "map", Err: ErrInvalidOffset}
	}
	if length < 0 {
		return nil, &Error{Op: "map", Err: ErrInvalidSize}
	}

	base, delta := align(offset, granularity())
	padded := length + delta
	if padded == 0 {
		return nil, &Error{Op: "map", Err: fmt.Errorf("%w: memory map must have a non-zero length", ErrInvalidSize)}
	}

	region, unmap, err := osMap(f, base, padded)
	if err != nil {
		return nil, &Error{Op: "map", Err: err}
	}

	return &Mapping{
		region: region,
		data:   region[delta : delta+length : delta+length],
		offset: offset,
		unmap:  unmap,
	}, nil
}

// Close releases the mapping and, for mappings created by Open, the file.
// It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	var err error
	if m.unmap != nil && m.region != nil {
		if uerr := m.unmap(m.region); uerr != nil {
			err = &Error{Op: "unmap", Err: uerr}
		}
	}
	if m.file != nil {
		if cerr := m.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	m.region = nil
	m.data = nil
	return err
}

// Bytes returns the caller-visible bytes. The slice is valid only until
// Close is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Len returns the caller-requested length.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Offset returns the file offset the mapping starts at.
func (m *Mapping) Offset() int64 {
	return m.offset
}

// Region returns a zero-copy sub-view of the mapping.
func (m *Mapping) Region(r types.ByteRange) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if r.Start < 0 || r.Start > r.End || r.End > len(m.data) {
		return nil, fmt.Errorf("%w: %s of %d bytes", ErrOutOfBounds, r, len(m.data))
	}
	return r.Slice(m.data), nil
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.region) == 0 {
		return nil
	}
	// The padded region is page aligned, which madvise requires.
	return osAdvise(m.region, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

const maxLen = int(^uint(0) >> 1)
