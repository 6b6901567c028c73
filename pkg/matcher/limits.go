package matcher

import (
	"fmt"
	"regexp/syntax"
)

// instBytes approximates the memory one compiled instruction occupies,
// including its share of the engine's cache.
const instBytes = 40

// checkSize estimates the compiled size of pattern and fails when it exceeds
// limit. Patterns using syntax RE2 cannot parse (lookaround, backreferences)
// are not estimated; regexp2's MatchTimeout bounds those instead.
func checkSize(pattern string, foldCase bool, limit int) error {
	if limit <= 0 {
		return nil
	}
	flags := syntax.Perl
	if foldCase {
		flags |= syntax.FoldCase
	}
	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		return nil
	}
	prog, err := syntax.Compile(re.Simplify())
	if err != nil {
		return nil
	}
	if size := len(prog.Inst) * instBytes; size > limit {
		return fmt.Errorf("%w: ~%d bytes > %d", ErrSizeLimit, size, limit)
	}
	return nil
}
