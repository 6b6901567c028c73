// Package sarif renders resolved pattern trees as SARIF 2.1.0 logs.
package sarif

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/praetorian-inc/logmap/pkg/tree"
	"github.com/praetorian-inc/logmap/pkg/types"
)

const (
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version   = "2.1.0"
	ToolName  = "logmap"
)

// Report is the top-level SARIF log.
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

type Tool struct {
	Driver Driver `json:"driver"`
}

type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule describes one tree node.
type Rule struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	ShortDescription Text           `json:"shortDescription"`
	Properties       RuleProperties `json:"properties"`
}

type RuleProperties struct {
	Pattern string `json:"pattern"`
	Depth   int    `json:"depth"`
}

type Text struct {
	Text string `json:"text"`
}

// Result is one cursor of one node.
type Result struct {
	RuleID    string     `json:"ruleId"`
	RuleIndex int        `json:"ruleIndex"`
	Level     string     `json:"level"`
	Message   Text       `json:"message"`
	Locations []Location `json:"locations"`
}

type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region spans the rest of the line from the cursor. Lines and columns are
// 1-based; columns count runes.
type Region struct {
	StartLine   int   `json:"startLine"`
	StartColumn int   `json:"startColumn"`
	EndLine     int   `json:"endLine"`
	EndColumn   int   `json:"endColumn"`
	Snippet     *Text `json:"snippet,omitempty"`
}

// NewReport creates an empty report for the given tool version.
func NewReport(toolVersion string) *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{{
			Tool:    Tool{Driver: Driver{Name: ToolName, Version: toolVersion, Rules: []Rule{}}},
			Results: []Result{},
		}},
	}
}

// AddTree adds one rule per descendant of root and one result per cursor.
// Line text for snippets comes from lines when it is non-nil.
func (r *Report) AddTree(root *tree.Node, lines tree.LineSource, filePath string) {
	run := &r.Runs[0]
	index := make(map[string]int)
	root.Walk(func(n *tree.Node, depth int) bool {
		if n == root {
			return true
		}
		if _, ok := index[n.ID]; !ok {
			index[n.ID] = len(run.Tool.Driver.Rules)
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, Rule{
				ID:               n.ID,
				Name:             n.Label,
				ShortDescription: Text{Text: n.Label},
				Properties:       RuleProperties{Pattern: n.Pattern, Depth: depth},
			})
		}
		return true
	})

	uri := formatFileURI(filePath)
	for _, hit := range root.Hits(lines) {
		run.Results = append(run.Results, newResult(hit, index[hit.RuleID], uri))
	}
}

func newResult(hit types.Hit, ruleIndex int, uri string) Result {
	pos := hit.Position()
	region := Region{
		StartLine:   pos.Line,
		StartColumn: pos.Column,
		EndLine:     pos.Line,
		EndColumn:   pos.Column,
	}
	if hit.Line != nil {
		off := min(hit.Cursor.Offset, len(hit.Line))
		region.EndColumn = pos.Column + utf8.RuneCount(hit.Line[off:])
		region.Snippet = &Text{Text: string(hit.Line)}
	}
	return Result{
		RuleID:    hit.RuleID,
		RuleIndex: ruleIndex,
		Level:     level(hit.Path),
		Message:   Text{Text: strings.Join(hit.Path, " > ")},
		Locations: []Location{{
			PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: uri},
				Region:           region,
			},
		}},
	}
}

// level maps the top-level label of a hit to a SARIF level.
func level(path []string) string {
	if len(path) == 0 {
		return "note"
	}
	switch strings.ToLower(path[0]) {
	case "fatal", "error", "http-5xx":
		return "error"
	case "warn", "warning", "http-4xx":
		return "warning"
	default:
		return "note"
	}
}

// ToJSON serializes the report.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI form: absolute paths get
// a file:// prefix, relative paths stay as-is.
func formatFileURI(path string) string {
	path = filepath.ToSlash(path)
	if !filepath.IsAbs(filepath.FromSlash(path)) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "file://" + path
}
