package sarif

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/logmap/pkg/lineindex"
	"github.com/praetorian-inc/logmap/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	report := NewReport("1.2.3")

	assert.Equal(t, SchemaURI, report.Schema)
	assert.Equal(t, Version, report.Version)
	require.Len(t, report.Runs, 1)
	assert.Equal(t, ToolName, report.Runs[0].Tool.Driver.Name)
	assert.Equal(t, "1.2.3", report.Runs[0].Tool.Driver.Version)
	assert.NotNil(t, report.Runs[0].Results)
}

func resolvedTree(t *testing.T, text string) (*tree.Node, *lineindex.Index) {
	t.Helper()
	idx := lineindex.Build([]byte(text))
	root := tree.NewNode("logmap", "",
		&tree.Node{ID: "log.error", Label: "error", Pattern: `ERROR`, Children: []*tree.Node{
			{ID: "log.error.network", Label: "network", Pattern: `refused`},
		}},
		&tree.Node{ID: "log.info", Label: "info", Pattern: `INFO`},
	)
	require.NoError(t, tree.Resolve(context.Background(), idx, root))
	return root, idx
}

func TestAddTree(t *testing.T) {
	root, idx := resolvedTree(t, "INFO up\nERROR dial: connection refused\nélan ERROR x")
	report := NewReport("dev")
	report.AddTree(root, idx, "/var/log/app.log")

	rules := report.Runs[0].Tool.Driver.Rules
	require.Len(t, rules, 3)
	assert.Equal(t, "log.error", rules[0].ID)
	assert.Equal(t, "error", rules[0].Name)
	assert.Equal(t, "log.error.network", rules[1].ID)
	assert.Equal(t, 2, rules[1].Properties.Depth)
	assert.Equal(t, "log.info", rules[2].ID)

	results := report.Runs[0].Results
	require.Len(t, results, 4)

	first := results[0]
	assert.Equal(t, "log.error", first.RuleID)
	assert.Equal(t, 0, first.RuleIndex)
	assert.Equal(t, "error", first.Level)
	loc := first.Locations[0].PhysicalLocation
	assert.Equal(t, "file:///var/log/app.log", loc.ArtifactLocation.URI)
	assert.Equal(t, 2, loc.Region.StartLine)
	assert.Equal(t, 1, loc.Region.StartColumn)
	require.NotNil(t, loc.Region.Snippet)
	assert.Equal(t, "ERROR dial: connection refused", loc.Region.Snippet.Text)

	second := results[1].Locations[0].PhysicalLocation.Region
	assert.Equal(t, 3, second.StartLine)
	assert.Equal(t, 6, second.StartColumn, "columns count runes")
	assert.Equal(t, 13, second.EndColumn)

	nested := results[2]
	assert.Equal(t, "log.error.network", nested.RuleID)
	assert.Equal(t, "error > network", nested.Message.Text)

	info := results[3]
	assert.Equal(t, "note", info.Level)
	assert.Equal(t, 2, info.RuleIndex)
}

func TestToJSON(t *testing.T) {
	root, idx := resolvedTree(t, "ERROR a")
	report := NewReport("dev")
	report.AddTree(root, idx, "app.log")

	data, err := report.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2.1.0", decoded["version"])
	assert.Equal(t, SchemaURI, decoded["$schema"])
	assert.Contains(t, string(data), `"uri": "app.log"`)
}

func TestFormatFileURI(t *testing.T) {
	assert.Equal(t, "logs/app.log", formatFileURI(filepath.Join("logs", "app.log")))
	abs, err := filepath.Abs("app.log")
	require.NoError(t, err)
	assert.Contains(t, formatFileURI(abs), "file://")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "error", level([]string{"fatal", "oom"}))
	assert.Equal(t, "warning", level([]string{"warn"}))
	assert.Equal(t, "note", level([]string{"info"}))
	assert.Equal(t, "note", level(nil))
}
