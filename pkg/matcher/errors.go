package matcher

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOption is returned when an engine cannot honor a Config option.
	ErrUnsupportedOption = errors.New("option not supported by engine")
	// ErrNestLimit is returned when a pattern nests groups deeper than Config.NestLimit.
	ErrNestLimit = errors.New("pattern exceeds nest limit")
	// ErrSizeLimit is returned when a compiled pattern exceeds Config.SizeLimit.
	ErrSizeLimit = errors.New("compiled pattern exceeds size limit")
	// ErrInvalidMatch is returned when a matcher reports a range outside the searched content.
	ErrInvalidMatch = errors.New("matcher returned an invalid range")
	// ErrUnknownEngine is returned for an unrecognized Config.Engine.
	ErrUnknownEngine = errors.New("unknown matcher engine")
)

// CompileError reports a pattern that could not be built into a Matcher.
type CompileError struct {
	Pattern string
	Engine  Engine
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s pattern %q: %v", e.Engine, e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// MatchError wraps an error raised by a Matcher while searching.
type MatchError struct {
	Offset int // search start offset of the failing call
	Err    error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("matching at offset %d: %v", e.Offset, e.Err)
}

func (e *MatchError) Unwrap() error {
	return e.Err
}
