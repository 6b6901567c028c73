package matcher

import (
	"testing"

	"github.com/praetorian-inc/logmap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func literalConfig() Config {
	cfg := DefaultConfig()
	cfg.Engine = EngineLiteral
	return cfg
}

func TestLiteralMatcher(t *testing.T) {
	m, err := New(`a.b`, literalConfig())
	require.NoError(t, err)

	r, ok, err := m.FindAt([]byte("axb a.b"), 0)
	require.NoError(t, err)
	require.True(t, ok, "metacharacters are literal")
	assert.Equal(t, types.ByteRange{Start: 4, End: 7}, r)

	_, ok, err = m.FindAt([]byte("axb a.b"), 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLiteralMatcher_CaseFolding(t *testing.T) {
	cfg := literalConfig()
	cfg.CaseSmart = true
	m, err := New(`timeout`, cfg)
	require.NoError(t, err)

	r, ok, err := m.FindAt([]byte("read TIMEOUT"), 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.ByteRange{Start: 5, End: 12}, r)
}

func TestLiteralMatcher_FindAll(t *testing.T) {
	m, err := New(`ab`, literalConfig())
	require.NoError(t, err)
	got, err := FindAll(m, []byte("abab ab"))
	require.NoError(t, err)
	assert.Equal(t, []types.ByteRange{{Start: 0, End: 2}, {Start: 2, End: 4}, {Start: 5, End: 7}}, got)

	empty, err := New(``, literalConfig())
	require.NoError(t, err)
	got, err = FindAll(empty, []byte("ab"))
	require.NoError(t, err)
	assert.Len(t, got, 3, "an empty literal matches at every offset")
}
