package logmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/logmap/pkg/matcher"
	"github.com/praetorian-inc/logmap/pkg/metrics"
	"github.com/praetorian-inc/logmap/pkg/tree"
)

const sample = "2024-01-01 INFO service started\n" +
	"2024-01-01 ERROR connection refused to db:5432\n" +
	"2024-01-01 WARN retrying in 5s\n" +
	"2024-01-01 ERROR timeout after 3000ms\n"

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpen(t *testing.T) {
	lm, err := Open(writeLog(t, sample))
	require.NoError(t, err)
	defer lm.Close()

	assert.Equal(t, len(sample), lm.Len())
	assert.Equal(t, 4, lm.LineCount())

	line, ok := lm.Line(2)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01 WARN retrying in 5s", string(line))

	_, ok = lm.Line(4)
	assert.False(t, ok)

	n, ok := lm.LineOf(len("2024-01-01 INFO service started\n"))
	require.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_EmptyFile(t *testing.T) {
	lm, err := Open(writeLog(t, ""))
	require.NoError(t, err)
	defer lm.Close()

	assert.Equal(t, 0, lm.LineCount())
	assert.Empty(t, lm.Lines(0, 10))
	assert.Nil(t, lm.Bytes())
}

func TestNew_CallerOwnsFile(t *testing.T) {
	f, err := os.Open(writeLog(t, sample))
	require.NoError(t, err)

	lm, err := New(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	defer lm.Close()

	line, ok := lm.Line(0)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01 INFO service started", string(line))
}

func TestClose_Idempotent(t *testing.T) {
	lm, err := Open(writeLog(t, sample))
	require.NoError(t, err)

	require.NoError(t, lm.Close())
	require.NoError(t, lm.Close())
	assert.Nil(t, lm.Bytes())
}

func TestLines_ClipsAtEnd(t *testing.T) {
	lm, err := Open(writeLog(t, sample))
	require.NoError(t, err)
	defer lm.Close()

	lines := lm.Lines(2, 10)
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-01-01 ERROR timeout after 3000ms", string(lines[1]))
	assert.Empty(t, lm.Lines(9, 1))
}

func TestFindInRanges(t *testing.T) {
	lm, err := Open(writeLog(t, sample))
	require.NoError(t, err)
	defer lm.Close()

	ranges := lm.LineRanges(1, 3)
	matches, err := lm.FindInRanges(ranges, `\d+ms|\d+s\b`, matcher.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, matches, 2)

	data := lm.Bytes()
	assert.Equal(t, "5s", string(matches[0].Slice(data)))
	assert.Equal(t, "3000ms", string(matches[1].Slice(data)))
}

func TestFindInRanges_OutOfBounds(t *testing.T) {
	lm, err := Open(writeLog(t, sample))
	require.NoError(t, err)
	defer lm.Close()

	_, err = lm.FindInRanges([]ByteRange{{Start: 0, End: len(sample) + 1}}, "x", matcher.DefaultConfig())
	require.Error(t, err)
}

func TestFindInRanges_InvalidPattern(t *testing.T) {
	lm, err := Open(writeLog(t, sample))
	require.NoError(t, err)
	defer lm.Close()

	_, err = lm.FindInRanges(lm.LineRanges(0, 1), "(", matcher.DefaultConfig())
	var compileErr *matcher.CompileError
	assert.ErrorAs(t, err, &compileErr)
}

func TestResolve(t *testing.T) {
	lm, err := Open(writeLog(t, sample))
	require.NoError(t, err)
	defer lm.Close()

	conn := tree.NewNode("connection", "connection refused")
	timeout := tree.NewNode("timeout", "timeout")
	errNode := tree.NewNode("error", "ERROR", conn, timeout)
	root := tree.NewNode("app.log", "", errNode)

	require.NoError(t, lm.Resolve(context.Background(), root))

	assert.Equal(t, []Cursor{{Line: 1, Offset: 11}, {Line: 3, Offset: 11}}, errNode.Cursors)
	assert.Equal(t, []Cursor{{Line: 1, Offset: 17}}, conn.Cursors)
	assert.Equal(t, []Cursor{{Line: 3, Offset: 17}}, timeout.Cursors)
}

func TestResolveRules_Builtin(t *testing.T) {
	rules, err := LoadBuiltinRules()
	require.NoError(t, err)
	require.NotEmpty(t, rules)

	lm, err := Open(writeLog(t, sample), WithWorkers(2))
	require.NoError(t, err)
	defer lm.Close()

	root, err := lm.ResolveRules(context.Background(), rules)
	require.NoError(t, err)
	assert.Equal(t, "app.log", root.Label)
	assert.Len(t, root.Cursors, 4)

	hits := root.Hits(lm.Index())
	assert.NotEmpty(t, hits)
	for _, h := range hits {
		assert.NotEmpty(t, h.Line)
	}
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	lm, err := Open(writeLog(t, sample), WithMetrics(m))
	require.NoError(t, err)
	defer lm.Close()

	count, err := testutil.GatherAndCount(reg, "logmap_indexed_lines_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	root := tree.NewNode("root", "", tree.NewNode("error", "ERROR"))
	require.NoError(t, lm.Resolve(context.Background(), root))

	count, err = testutil.GatherAndCount(reg, "logmap_cursors_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}
