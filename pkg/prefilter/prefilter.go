// Package prefilter narrows the set of patterns worth running against a line
// using Aho-Corasick keyword search.
package prefilter

import (
	"bytes"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Prefilter maps keyword hits back to the entries that declared them. An
// entry without keywords is always a candidate. It is safe for concurrent use.
type Prefilter struct {
	matcher  *ahocorasick.Matcher
	keywords []string // keyword at each dictionary index
	owners   [][]int  // dictionary index -> entries needing it
	always   []int    // entries without keywords
	entries  int
	foldCase bool
}

// Option configures a Prefilter.
type Option func(*Prefilter)

// WithFoldCase matches keywords ASCII case-insensitively.
func WithFoldCase() Option {
	return func(pf *Prefilter) { pf.foldCase = true }
}

// New builds a prefilter over keyword sets; entry i owns sets[i].
func New(sets [][]string, opts ...Option) *Prefilter {
	pf := &Prefilter{entries: len(sets)}
	for _, opt := range opts {
		opt(pf)
	}

	index := make(map[string]int)
	for i, keywords := range sets {
		if len(keywords) == 0 {
			pf.always = append(pf.always, i)
			continue
		}
		for _, kw := range keywords {
			if pf.foldCase {
				kw = strings.ToLower(kw)
			}
			k, ok := index[kw]
			if !ok {
				k = len(pf.keywords)
				index[kw] = k
				pf.keywords = append(pf.keywords, kw)
				pf.owners = append(pf.owners, nil)
			}
			pf.owners[k] = append(pf.owners[k], i)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}
	return pf
}

// Len returns the number of entries.
func (pf *Prefilter) Len() int {
	return pf.entries
}

// Active reports whether any entry declares keywords. An inactive prefilter
// returns every entry from Candidates.
func (pf *Prefilter) Active() bool {
	return pf.matcher != nil
}

// Candidates returns, in ascending order, the entries that may match
// content: those whose keywords occur in it and those without keywords.
func (pf *Prefilter) Candidates(content []byte) []int {
	if pf.matcher == nil {
		return append([]int(nil), pf.always...)
	}
	if pf.foldCase {
		content = bytes.ToLower(content)
	}

	selected := make([]bool, pf.entries)
	for _, i := range pf.always {
		selected[i] = true
	}
	for _, hit := range pf.matcher.MatchThreadSafe(content) {
		for _, i := range pf.owners[hit] {
			selected[i] = true
		}
	}

	out := make([]int, 0, pf.entries)
	for i, ok := range selected {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// Keywords returns the deduplicated dictionary.
func (pf *Prefilter) Keywords() []string {
	return append([]string(nil), pf.keywords...)
}
