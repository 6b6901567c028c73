package matcher

import (
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/logmap/pkg/types"
)

// Regexp2Matcher implements Matcher with regexp2 for Perl-style syntax
// (lookaround, backreferences, atomic groups). It is safe for concurrent use.
type Regexp2Matcher struct {
	re   *regexp2.Regexp
	bufs sync.Pool
}

// runeText is content decoded into runes together with the byte offset of
// every rune, since regexp2 reports positions in runes.
type runeText struct {
	runes   []rune
	offsets []int // len(runes)+1 entries; the last is len(content)
}

func (t *runeText) decode(content []byte) {
	t.runes = t.runes[:0]
	t.offsets = t.offsets[:0]
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		t.runes = append(t.runes, r)
		t.offsets = append(t.offsets, i)
		i += size
	}
	t.offsets = append(t.offsets, len(content))
}

// runeIndex returns the first rune starting at or after byte offset at.
func (t *runeText) runeIndex(at int) int {
	return sort.SearchInts(t.offsets, at)
}

func newRegexp2(pattern string, cfg Config, foldCase bool) (*Regexp2Matcher, error) {
	var opts regexp2.RegexOptions
	if foldCase {
		opts |= regexp2.IgnoreCase
	}
	if cfg.MultiLine {
		opts |= regexp2.Multiline
	}
	if cfg.DotMatchesNewLine {
		opts |= regexp2.Singleline
	}

	// Try RE2 mode first; fall back to the default Perl-compatible mode for
	// syntax RE2 mode rejects.
	re, err := regexp2.Compile(pattern, opts|regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(pattern, opts)
		if err != nil {
			return nil, err
		}
	}
	re.MatchTimeout = cfg.MatchTimeout

	m := &Regexp2Matcher{re: re}
	m.bufs.New = func() any { return new(runeText) }
	return m, nil
}

// maxPooledRunes bounds the decoded buffers kept for reuse.
const maxPooledRunes = 1 << 20

// FindAt implements Matcher. Each call decodes content; iterate with
// Prepare to decode once.
func (m *Regexp2Matcher) FindAt(content []byte, at int) (types.ByteRange, bool, error) {
	if at < 0 || at > len(content) {
		return types.ByteRange{}, false, nil
	}
	s := m.prepare(content)
	defer s.Release()
	return s.FindAt(at)
}

// Prepare implements Preparer by decoding content into runes once.
func (m *Regexp2Matcher) Prepare(content []byte) (Prepared, error) {
	return m.prepare(content), nil
}

func (m *Regexp2Matcher) prepare(content []byte) *regexp2Search {
	text := m.bufs.Get().(*runeText)
	text.decode(content)
	return &regexp2Search{m: m, text: text, size: len(content)}
}

type regexp2Search struct {
	m    *Regexp2Matcher
	text *runeText
	size int
}

func (s *regexp2Search) FindAt(at int) (types.ByteRange, bool, error) {
	if at < 0 || at > s.size {
		return types.ByteRange{}, false, nil
	}
	match, err := s.m.re.FindRunesMatchStartingAt(s.text.runes, s.text.runeIndex(at))
	if err != nil {
		return types.ByteRange{}, false, fmt.Errorf("regexp2: %w", err)
	}
	if match == nil {
		return types.ByteRange{}, false, nil
	}
	return types.ByteRange{
		Start: s.text.offsets[match.Index],
		End:   s.text.offsets[match.Index+match.Length],
	}, true, nil
}

func (s *regexp2Search) Release() {
	if s.text == nil {
		return
	}
	if cap(s.text.runes) <= maxPooledRunes {
		s.m.bufs.Put(s.text)
	}
	s.text = nil
}

// String returns the compiled pattern.
func (m *Regexp2Matcher) String() string {
	return m.re.String()
}
