package types

import "fmt"

// Cursor identifies a position inside a specific line: the zero-based line
// number and a byte offset within that line's text.
type Cursor struct {
	Line   int
	Offset int
}

func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d", c.Line, c.Offset)
}
