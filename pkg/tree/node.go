// Package tree resolves a hierarchy of patterns against the lines of a log.
//
// Every node holds cursors: (line, offset) pairs marking where its pattern
// matched. A child is only tried on lines its parent matched, starting at
// the parent's match offset, so a node's cursors are the lines satisfying
// its pattern and every ancestor's.
package tree

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/praetorian-inc/logmap/pkg/types"
)

// Node is a labeled pattern with child nodes and the cursors produced by
// the last resolution.
type Node struct {
	ID       string
	Label    string
	Pattern  string   // empty matches every line at offset 0
	Keywords []string // prefilter keywords; empty means always try the pattern
	Children []*Node

	Cursors []types.Cursor
	Stat    Stat
}

// NewNode returns a node with the given children. The ID defaults to the label.
func NewNode(label, pattern string, children ...*Node) *Node {
	return &Node{ID: label, Label: label, Pattern: pattern, Children: children}
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// FromRule converts a rule hierarchy into nodes.
func FromRule(r *types.Rule) *Node {
	n := &Node{
		ID:       r.ID,
		Label:    r.Label,
		Pattern:  r.Pattern,
		Keywords: r.Keywords,
	}
	for _, c := range r.Children {
		n.Children = append(n.Children, FromRule(c))
	}
	return n
}

// FromRules builds a root that holds every line and has one child per rule.
func FromRules(label string, rules []*types.Rule) *Node {
	root := NewNode(label, "")
	for _, r := range rules {
		root.Children = append(root.Children, FromRule(r))
	}
	return root
}

// Walk visits n and its descendants depth first, parents before children
// and children in declared order. Returning false skips a node's children.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

// Find returns the first node in walk order whose ID or label is name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node, _ int) bool {
		if found != nil {
			return false
		}
		if c.ID == name || c.Label == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Reset clears cursors and stats in the whole subtree.
func (n *Node) Reset() {
	n.Walk(func(c *Node, _ int) bool {
		c.Cursors = nil
		c.Stat = Stat{}
		return true
	})
}

// LineSet returns the distinct lines n holds cursors for.
func (n *Node) LineSet() *roaring64.Bitmap {
	bm := roaring64.New()
	for _, c := range n.Cursors {
		bm.Add(uint64(c.Line))
	}
	return bm
}

// LineSource supplies line text by zero-based line number.
// *lineindex.Index satisfies it.
type LineSource interface {
	LineCount() int
	Line(n int) ([]byte, bool)
}

// Hits flattens the cursors of every descendant of n, in walk order. Path
// holds the labels from n's child down to the hit's node. Line text is
// taken from lines when it is non-nil.
func (n *Node) Hits(lines LineSource) []types.Hit {
	var hits []types.Hit
	var walk func(node *Node, path []string)
	walk = func(node *Node, path []string) {
		for _, child := range node.Children {
			p := append(path[:len(path):len(path)], child.Label)
			for _, c := range child.Cursors {
				h := types.Hit{RuleID: child.ID, Path: p, Cursor: c}
				if lines != nil {
					h.Line, _ = lines.Line(c.Line)
				}
				hits = append(hits, h)
			}
			walk(child, p)
		}
	}
	walk(n, nil)
	return hits
}
