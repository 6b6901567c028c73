package matcher

import "strings"

// stripFreeSpacing removes free-spacing syntax from pattern: unescaped
// whitespace and # comments outside character classes, (?#...) comments and
// a leading (?x) flag. Escaped whitespace and whitespace inside classes is
// kept. Engines without a free-spacing mode compile the result.
func stripFreeSpacing(pattern string) string {
	pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "(?x)")

	var b strings.Builder
	b.Grow(len(pattern))
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
		case strings.HasPrefix(pattern[i:], "(?#"):
			end := strings.IndexByte(pattern[i:], ')')
			if end < 0 {
				return b.String()
			}
			i += end
		case c == '#':
			end := strings.IndexByte(pattern[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// usesFreeSpacing reports whether pattern opts into free-spacing syntax.
func usesFreeSpacing(pattern string, cfg Config) bool {
	return cfg.IgnoreWhitespace || strings.HasPrefix(strings.TrimSpace(pattern), "(?x)")
}
