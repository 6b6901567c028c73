package tree

import "fmt"

// ResolveError reports the node whose pattern failed to compile or match.
type ResolveError struct {
	Label   string
	Pattern string
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("node %q (pattern %q): %v", e.Label, e.Pattern, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
