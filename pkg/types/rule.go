package types

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
)

// Rule is a node in a hierarchy of log classification rules. A line
// satisfies a rule when it satisfies the rule's pattern and every
// ancestor's pattern.
type Rule struct {
	ID               string   `validate:"required"` // e.g., "log.level.error"
	Label            string   `validate:"required"` // display label
	Pattern          string   // regex pattern; empty matches every line
	StructuralID     string   // SHA-1 of pattern (computed)
	Description      string   // optional
	Keywords         []string // keywords for Aho-Corasick prefiltering
	Examples         []string // lines the pattern must match
	NegativeExamples []string // lines the pattern must not match
	Categories       []string // classification tags
	Children         []*Rule  `validate:"dive"`
}

// namedGroupRe matches named capture groups like (?P<name>...) so they can be
// normalized to plain groups before hashing.
var namedGroupRe = regexp.MustCompile(`\(\?P<[^>]+>`)

// ComputeStructuralID computes SHA-1 of pattern, normalizing named capture
// groups to unnamed groups so renaming a group keeps the same ID.
func (r *Rule) ComputeStructuralID() string {
	normalized := namedGroupRe.ReplaceAllString(r.Pattern, "(")
	h := sha1.New()
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}

// Walk visits r and its descendants depth first, parents before children.
// Returning false from fn skips the node's children.
func (r *Rule) Walk(fn func(r *Rule, depth int) bool) {
	type frame struct {
		rule  *Rule
		depth int
	}
	stack := []frame{{r, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.rule, f.depth) {
			continue
		}
		for i := len(f.rule.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.rule.Children[i], f.depth + 1})
		}
	}
}

// Count returns the number of rules in the hierarchy rooted at r.
func (r *Rule) Count() int {
	n := 0
	r.Walk(func(*Rule, int) bool {
		n++
		return true
	})
	return n
}
