//go:build cgo && hyperscan

package matcher

import (
	"sync"
	"testing"

	"github.com/praetorian-inc/logmap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hyperscanConfig() Config {
	cfg := DefaultConfig()
	cfg.Engine = EngineHyperscan
	return cfg
}

func TestHyperscanMatcher_AgreesWithRegexp2(t *testing.T) {
	patterns := []string{`ERROR \d+`, `\bfoo`, `(?<=x)y`, `(\w+) \1`, ``}
	contents := []string{"INFO ERROR 42 done", "afoo foo", "xy", "retry retry", "abc"}

	for _, p := range patterns {
		hs, err := New(p, hyperscanConfig())
		require.NoError(t, err, "compile %q", p)
		re := mustRegexp2(t, p)
		for _, c := range contents {
			want, err := FindAll(re, []byte(c))
			require.NoError(t, err)
			got, err := FindAll(hs, []byte(c))
			require.NoError(t, err)
			assert.Equal(t, want, got, "pattern %q content %q", p, c)
		}
		require.NoError(t, Release(hs))
	}
}

func TestHyperscanMatcher_Concurrent(t *testing.T) {
	m, err := New(`ERROR`, hyperscanConfig())
	require.NoError(t, err)
	defer Release(m)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r, ok, err := m.FindAt([]byte("INFO ERROR z"), 0)
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, types.ByteRange{Start: 5, End: 10}, r)
			}
		}()
	}
	wg.Wait()
}

func TestHyperscanMatcher_PreparedAgreesWithFindAt(t *testing.T) {
	content := []byte("INFO ERROR 42 done\nERROR 7 tail")
	m, err := New(`ERROR \d+`, hyperscanConfig())
	require.NoError(t, err)
	defer Release(m)

	p, err := m.(Preparer).Prepare(content)
	require.NoError(t, err)
	defer p.Release()
	for at := 0; at <= len(content); at++ {
		wantR, wantOK, err := m.FindAt(content, at)
		require.NoError(t, err)
		gotR, gotOK, err := p.FindAt(at)
		require.NoError(t, err)
		assert.Equal(t, wantOK, gotOK, "at %d", at)
		assert.Equal(t, wantR, gotR, "at %d", at)
	}
}
