package serve

import (
	"encoding/json"

	"github.com/praetorian-inc/logmap/pkg/tree"
	"github.com/praetorian-inc/logmap/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "info" | "lines" | "find" | "resolve" | "close"
	Payload json.RawMessage `json:"payload"`
}

// LinesPayload is the payload for "lines" requests
type LinesPayload struct {
	Start int `json:"start"`
	Count int `json:"count"`
}

// FindPayload is the payload for "find" requests. Start and Count select
// the lines searched; Count of zero searches to the end of the file.
type FindPayload struct {
	Pattern    string `json:"pattern"`
	Start      int    `json:"start"`
	Count      int    `json:"count"`
	IgnoreCase bool   `json:"ignore_case"`
	Engine     string `json:"engine,omitempty"`
}

// ResolvePayload is the payload for "resolve" requests. Rules holds a YAML
// rules document; when empty the server's rules are used.
type ResolvePayload struct {
	Rules   string `json:"rules,omitempty"`
	Include string `json:"include,omitempty"`
	Exclude string `json:"exclude,omitempty"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // request type, "ready" or "decode"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
	Path    string `json:"path"`
	Lines   int    `json:"lines"`
}

// InfoData is the data field for "info" responses
type InfoData struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
	Lines int    `json:"lines"`
}

// LinesData is the data field for "lines" responses
type LinesData struct {
	Start int      `json:"start"`
	Lines []string `json:"lines"`
}

// Match is one "find" result. Start and End are absolute file offsets.
type Match struct {
	Line  int    `json:"line"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// FindData is the data field for "find" responses
type FindData struct {
	Matches []Match `json:"matches"`
}

// Hit is a classified line in wire form. Line and Column are 1-based;
// Offset is the byte offset of the cursor within the line.
type Hit struct {
	RuleID string   `json:"rule_id"`
	Path   []string `json:"path"`
	Line   int      `json:"line"`
	Column int      `json:"column"`
	Offset int      `json:"offset"`
	Text   string   `json:"text"`
}

// ResolveData is the data field for "resolve" responses
type ResolveData struct {
	Summary tree.Summary `json:"summary"`
	Hits    []Hit        `json:"hits"`
}

// NewHits converts resolved hits to wire form.
func NewHits(hits []types.Hit) []Hit {
	out := make([]Hit, 0, len(hits))
	for i := range hits {
		h := &hits[i]
		pos := h.Position()
		out = append(out, Hit{
			RuleID: h.RuleID,
			Path:   h.Path,
			Line:   pos.Line,
			Column: pos.Column,
			Offset: h.Cursor.Offset,
			Text:   string(h.Line),
		})
	}
	return out
}
