package tree

import "time"

// Status is the outcome of resolving one node.
type Status int

const (
	// StatusPending means the node was not reached.
	StatusPending Status = iota
	// StatusResolved means the node's pattern ran over its parent's cursors.
	StatusResolved
	// StatusPruned means the parent held no cursors, so the node was skipped.
	StatusPruned
	// StatusFailed means the node's matcher returned an error.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusPruned:
		return "pruned"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stat describes one node's resolution.
type Stat struct {
	Status   Status
	Tested   int           // parent cursors the pattern ran against
	Skipped  int           // parent cursors rejected by the keyword prefilter
	Duration time.Duration // wall time spent expanding into this node
	Err      error         // set when Status is StatusFailed
}

// Summary aggregates Stat over a tree.
type Summary struct {
	Nodes    int
	Resolved int
	Pruned   int
	Failed   int
	Pending  int
	Cursors  int
}

// Summarize counts statuses and cursors below and including n.
func Summarize(n *Node) Summary {
	var s Summary
	n.Walk(func(c *Node, _ int) bool {
		s.Nodes++
		s.Cursors += len(c.Cursors)
		switch c.Stat.Status {
		case StatusResolved:
			s.Resolved++
		case StatusPruned:
			s.Pruned++
		case StatusFailed:
			s.Failed++
		default:
			s.Pending++
		}
		return true
	})
	return s
}
