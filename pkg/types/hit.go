package types

// Hit is a resolved cursor annotated for reporting.
type Hit struct {
	RuleID string   // ID of the rule node the cursor belongs to
	Path   []string // labels from the root down to the node
	Cursor Cursor
	Line   []byte // line text, without the terminator
}

// Label returns the label of the node that produced the hit.
func (h *Hit) Label() string {
	if len(h.Path) == 0 {
		return ""
	}
	return h.Path[len(h.Path)-1]
}

// Position returns the 1-based line and column of the hit.
func (h *Hit) Position() SourcePoint {
	_, column := ComputeLineColumn(h.Line, h.Cursor.Offset)
	return SourcePoint{Line: h.Cursor.Line + 1, Column: column}
}
