package rule

import (
	"testing"

	"github.com/praetorian-inc/logmap/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string returns empty slice", "", []string{}},
		{"single pattern", "log.*", []string{"log.*"}},
		{"multiple patterns", "log.error.*,http.*", []string{"log.error.*", "http.*"}},
		{"whitespace trimmed and blanks dropped", " log.* , ,http.* ", []string{"log.*", "http.*"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePatterns(tt.input))
		})
	}
}

func sampleRules() []*types.Rule {
	return []*types.Rule{
		{ID: "log.error", Label: "error", Children: []*types.Rule{
			{ID: "log.error.network", Label: "network"},
			{ID: "log.error.storage", Label: "storage"},
		}},
		{ID: "log.warn", Label: "warn", Children: []*types.Rule{
			{ID: "log.warn.deprecation", Label: "deprecation"},
		}},
		{ID: "http.status.server_error", Label: "http-5xx"},
	}
}

func ids(rules []*types.Rule) []string {
	out := []string{}
	for _, top := range rules {
		top.Walk(func(r *types.Rule, _ int) bool {
			out = append(out, r.ID)
			return true
		})
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		config   FilterConfig
		expected []string
	}{
		{
			name:     "no patterns keeps everything",
			config:   FilterConfig{},
			expected: []string{"log.error", "log.error.network", "log.error.storage", "log.warn", "log.warn.deprecation", "http.status.server_error"},
		},
		{
			name:     "include by top-level ID",
			config:   FilterConfig{Include: []string{`^http\.`}},
			expected: []string{"http.status.server_error"},
		},
		{
			name:     "include by descendant ID keeps the whole top-level rule",
			config:   FilterConfig{Include: []string{`deprecation`}},
			expected: []string{"log.warn", "log.warn.deprecation"},
		},
		{
			name:     "exclude removes nested subtrees",
			config:   FilterConfig{Exclude: []string{`storage$`}},
			expected: []string{"log.error", "log.error.network", "log.warn", "log.warn.deprecation", "http.status.server_error"},
		},
		{
			name:     "include then exclude",
			config:   FilterConfig{Include: []string{`^log\.`}, Exclude: []string{`^log\.warn`}},
			expected: []string{"log.error", "log.error.network", "log.error.storage"},
		},
		{
			name:     "include matches none",
			config:   FilterConfig{Include: []string{`nomatch`}},
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := Filter(sampleRules(), tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(filtered))
		})
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	rules := sampleRules()
	filtered, err := Filter(rules, FilterConfig{Exclude: []string{`network`}})
	require.NoError(t, err)

	assert.Len(t, rules[0].Children, 2, "input hierarchy is untouched")
	assert.Len(t, filtered[0].Children, 1)
	assert.NotSame(t, rules[0], filtered[0])
	assert.Same(t, rules[1], filtered[1], "unchanged rules are not copied")
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := Filter(sampleRules(), FilterConfig{Include: []string{`[`}})
	assert.Error(t, err)

	_, err = Filter(sampleRules(), FilterConfig{Exclude: []string{`(`}})
	assert.Error(t, err)
}
