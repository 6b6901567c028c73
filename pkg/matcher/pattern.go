package matcher

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// hasUppercase reports whether pattern contains an uppercase literal.
// Escape sequences (\S, \p{Lu}, \x{41}) and group names do not count.
func hasUppercase(pattern string) bool {
	for i := 0; i < len(pattern); {
		switch {
		case pattern[i] == '\\':
			i = skipEscape(pattern, i)
			continue
		case strings.HasPrefix(pattern[i:], "(?P<"), strings.HasPrefix(pattern[i:], "(?<"):
			if end := strings.IndexByte(pattern[i:], '>'); end > 0 {
				i += end + 1
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(pattern[i:])
		if unicode.IsUpper(r) {
			return true
		}
		i += size
	}
	return false
}

// skipEscape returns the index just past the escape sequence at i.
func skipEscape(pattern string, i int) int {
	i++ // backslash
	if i >= len(pattern) {
		return i
	}
	c := pattern[i]
	i++
	if (c == 'p' || c == 'P' || c == 'x') && i < len(pattern) && pattern[i] == '{' {
		if end := strings.IndexByte(pattern[i:], '}'); end >= 0 {
			return i + end + 1
		}
	}
	return i
}

// checkNest fails when groups in pattern nest deeper than limit. A
// non-positive limit disables the check.
func checkNest(pattern string, limit int) error {
	if limit <= 0 {
		return nil
	}
	depth, inClass := 0, false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			i = skipClassPrefix(pattern, i)
		case c == '(':
			depth++
			if depth > limit {
				return fmt.Errorf("%w: depth %d > %d", ErrNestLimit, depth, limit)
			}
		case c == ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return nil
}

// skipClassPrefix skips a leading '^' and a literal ']' right after the '['
// at i, returning the index of the last byte consumed.
func skipClassPrefix(pattern string, i int) int {
	if i+1 < len(pattern) && pattern[i+1] == '^' {
		i++
	}
	if i+1 < len(pattern) && pattern[i+1] == ']' {
		i++
	}
	return i
}

// swapGreed rewrites pattern so greedy quantifiers become lazy and lazy ones
// greedy, for engines without an ungreedy flag.
func swapGreed(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\':
			b.WriteByte(c)
			if i+1 < len(pattern) {
				i++
				b.WriteByte(pattern[i])
			}
		case inClass:
			if c == ']' {
				inClass = false
			}
			b.WriteByte(c)
		case c == '[':
			end := skipClassPrefix(pattern, i)
			b.WriteString(pattern[i : end+1])
			i = end
			inClass = true
		case c == '(':
			b.WriteByte(c)
			// "(?" opens group syntax, not a quantifier.
			if i+1 < len(pattern) && pattern[i+1] == '?' {
				i++
				b.WriteByte('?')
			}
		case c == '*' || c == '+' || c == '?':
			b.WriteByte(c)
			i = toggleLazy(pattern, i, &b)
		case c == '{':
			end, ok := repetitionEnd(pattern, i)
			if !ok {
				b.WriteByte(c)
				continue
			}
			b.WriteString(pattern[i : end+1])
			i = toggleLazy(pattern, end, &b)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func toggleLazy(pattern string, i int, b *strings.Builder) int {
	if i+1 < len(pattern) && pattern[i+1] == '?' {
		return i + 1
	}
	b.WriteByte('?')
	return i
}

// repetitionEnd returns the index of the '}' closing a {n}, {n,} or {n,m}
// repetition starting at i.
func repetitionEnd(pattern string, i int) (int, bool) {
	j := i + 1
	digits := 0
	for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
		j++
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if j < len(pattern) && pattern[j] == ',' {
		j++
		for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
			j++
		}
	}
	if j < len(pattern) && pattern[j] == '}' {
		return j, true
	}
	return 0, false
}
