package types

// SourcePoint is line:column position (1-based).
type SourcePoint struct {
	Line   int
	Column int
}
