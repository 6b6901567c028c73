package mmap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/praetorian-inc/logmap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestMapping_OpenReadClose(t *testing.T) {
	content := []byte("INFO start\nERROR boom\n")
	m, err := Open(writeTemp(t, content))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Len())
	assert.Equal(t, int64(0), m.Offset())
	assert.Equal(t, content, m.Bytes())

	// ReadAt
	buf := make([]byte, 5)
	n, err := m.ReadAt(buf, 11)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "ERROR", string(buf))

	// ReadAt out of bounds
	n, err = m.ReadAt(buf, 100)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	// ReadAt negative offset
	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)
}

func TestMapping_UnalignedOffset(t *testing.T) {
	page := granularity()
	content := bytes.Repeat([]byte("0123456789abcdef"), (2*page)/16+4)
	f, err := os.Open(writeTemp(t, content))
	require.NoError(t, err)

	offsets := []int64{0, 1, int64(page) - 1, int64(page), int64(page) + 3}
	for _, off := range offsets {
		m, err := Map(f, off, 100)
		require.NoError(t, err, "offset %d", off)
		assert.Equal(t, content[off:off+100], m.Bytes(), "offset %d", off)
		assert.Equal(t, 100, m.Len())
		assert.Equal(t, off, m.Offset())
		require.NoError(t, m.Close(), "offset %d", off)
	}

	// A mapping outlives the caller's file handle.
	m, err := Map(f, 5, 10)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, content[5:15], m.Bytes())
	require.NoError(t, m.Close())
}

func TestMapping_ZeroLength(t *testing.T) {
	f, err := os.Open(writeTemp(t, []byte("abc")))
	require.NoError(t, err)
	defer f.Close()

	_, err = Map(f, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSize)

	var mmErr *Error
	require.ErrorAs(t, err, &mmErr)
	assert.Equal(t, "map", mmErr.Op)

	// Zero length at an unaligned offset still maps the padding.
	m, err := Map(f, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, m.Bytes())
	require.NoError(t, m.Close())
}

func TestMapping_InvalidArguments(t *testing.T) {
	f, err := os.Open(writeTemp(t, []byte("abc")))
	require.NoError(t, err)
	defer f.Close()

	_, err = Map(f, -1, 1)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	_, err = Map(f, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestOpenFile_TakesOwnership(t *testing.T) {
	content := []byte("INFO a\nWARN b\n")
	path := writeTemp(t, content)
	f, err := os.Open(path)
	require.NoError(t, err)
	// The mapping uses the open descriptor, not the path.
	require.NoError(t, os.Remove(path))

	m, err := OpenFile(f, int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, content, m.Bytes())

	require.NoError(t, m.Close())
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
}

func TestOpenFile_InvalidSizeLeavesFileOpen(t *testing.T) {
	f, err := os.Open(writeTemp(t, []byte("x")))
	require.NoError(t, err)
	defer f.Close()

	_, err = OpenFile(f, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = OpenFile(f, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = f.Stat()
	assert.NoError(t, err, "file must stay open after a failed OpenFile")
}

func TestMapping_EmptyFile(t *testing.T) {
	_, err := Open(writeTemp(t, nil))
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMapping_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.log"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMapping_Region(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("INFO x\nERROR y\n")))
	require.NoError(t, err)
	defer m.Close()

	r, err := m.Region(types.MustByteRange(7, 12))
	require.NoError(t, err)
	assert.Equal(t, "ERROR", string(r))

	_, err = m.Region(types.MustByteRange(7, 100))
	assert.ErrorIs(t, err, ErrOutOfBounds)

	require.NoError(t, m.Advise(AccessSequential))
	require.NoError(t, m.Advise(AccessRandom))
}

func TestMapping_AfterClose(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("data")))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	// Close is idempotent.
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
	_, err = m.Region(types.MustByteRange(0, 1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMapping_ConcurrentReaders(t *testing.T) {
	content := bytes.Repeat([]byte("line\n"), 10000)
	m, err := Open(writeTemp(t, content))
	require.NoError(t, err)
	defer m.Close()

	var wg sync.WaitGroup
	counts := make([]int, 8)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			counts[i] = bytes.Count(m.Bytes(), []byte{'\n'})
		}(i)
	}
	wg.Wait()

	for _, c := range counts {
		assert.Equal(t, 10000, c)
	}
}
