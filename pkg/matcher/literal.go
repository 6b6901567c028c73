package matcher

import (
	"bytes"

	"github.com/praetorian-inc/logmap/pkg/types"
)

// LiteralMatcher finds a fixed string. It is safe for concurrent use.
type LiteralMatcher struct {
	needle   []byte
	foldCase bool
}

func newLiteral(pattern string, foldCase bool) *LiteralMatcher {
	return &LiteralMatcher{needle: []byte(pattern), foldCase: foldCase}
}

// FindAt implements Matcher. An empty needle matches at every offset.
func (m *LiteralMatcher) FindAt(content []byte, at int) (types.ByteRange, bool, error) {
	if at < 0 || at > len(content) {
		return types.ByteRange{}, false, nil
	}
	n := len(m.needle)
	if !m.foldCase {
		i := bytes.Index(content[at:], m.needle)
		if i < 0 {
			return types.ByteRange{}, false, nil
		}
		return types.ByteRange{Start: at + i, End: at + i + n}, true, nil
	}
	for i := at; i+n <= len(content); i++ {
		if bytes.EqualFold(content[i:i+n], m.needle) {
			return types.ByteRange{Start: i, End: i + n}, true, nil
		}
	}
	return types.ByteRange{}, false, nil
}

// String returns the needle.
func (m *LiteralMatcher) String() string {
	return string(m.needle)
}
