package tree

import (
	"context"
	"fmt"
	"time"

	"github.com/praetorian-inc/logmap/pkg/matcher"
	"github.com/praetorian-inc/logmap/pkg/prefilter"
	"github.com/praetorian-inc/logmap/pkg/types"
	"golang.org/x/sync/errgroup"
)

// compiled pairs a node with its matcher and the keyword prefilter over its
// children.
type compiled struct {
	node     *Node
	m        matcher.Matcher
	children []*compiled
	pf       *prefilter.Prefilter
}

type resolver struct {
	cfg      config
	lines    LineSource
	matchers map[string]matcher.Matcher // by pattern
}

// expansion is what one parent cursor set produced for one child.
type expansion struct {
	cursors []types.Cursor
	tested  int
	skipped int
	err     error
}

// Resolve fills the cursors of every node under root from lines.
//
// All patterns are compiled before any line is read; a pattern that fails
// to compile aborts with a *ResolveError and leaves the tree untouched.
// Existing cursors are cleared. The root is offered every line at offset 0
// and keeps the lines its pattern matches (all of them when the pattern is
// empty). Each child then searches its parent's lines from the parent's
// match offset and records where its own match starts. A node without
// cursors prunes its subtree.
func Resolve(ctx context.Context, lines LineSource, root *Node, opts ...Option) error {
	cfg := newConfig(opts)
	start := time.Now()

	r := &resolver{cfg: cfg, lines: lines, matchers: make(map[string]matcher.Matcher)}
	defer r.release()

	top, err := r.compile(root)
	if err != nil {
		return err
	}
	root.Reset()

	if err := r.seed(ctx, top); err != nil {
		return err
	}

	stack := []*compiled{top}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(c.children) == 0 {
			continue
		}
		if len(c.node.Cursors) == 0 {
			prune(c)
			continue
		}

		parent := c.node.Cursors
		began := time.Now()
		results, err := r.expand(ctx, len(parent), func(i int) types.Cursor { return parent[i] }, c.children, c.pf)
		if err != nil {
			return err
		}
		r.apply(c.children, results, time.Since(began))

		for i := len(c.children) - 1; i >= 0; i-- {
			if c.children[i].node.Stat.Status == StatusFailed {
				prune(c.children[i])
				continue
			}
			stack = append(stack, c.children[i])
		}
	}

	if cfg.recorder != nil {
		cfg.recorder.ObserveResolve(time.Since(start))
	}
	cfg.logger.Debug("resolved tree", "root", root.Label, "nodes", root.Count(), "elapsed", time.Since(start))
	return nil
}

// compile builds a matcher for every node, sharing matchers between nodes
// with the same pattern.
func (r *resolver) compile(root *Node) (*compiled, error) {
	var build func(n *Node) (*compiled, error)
	build = func(n *Node) (*compiled, error) {
		m, ok := r.matchers[n.Pattern]
		if !ok {
			var err error
			m, err = matcher.New(n.Pattern, r.cfg.matcher)
			if err != nil {
				return nil, &ResolveError{Label: n.Label, Pattern: n.Pattern, Err: err}
			}
			r.matchers[n.Pattern] = m
		}
		c := &compiled{node: n, m: m}
		for _, child := range n.Children {
			cc, err := build(child)
			if err != nil {
				return nil, err
			}
			c.children = append(c.children, cc)
		}
		c.pf = r.prefilter(c.children)
		return c, nil
	}
	return build(root)
}

// prefilter returns a keyword prefilter over nodes, or nil when none of them
// declares keywords.
func (r *resolver) prefilter(nodes []*compiled) *prefilter.Prefilter {
	if !r.cfg.prefilter {
		return nil
	}
	sets := make([][]string, len(nodes))
	hasKeywords := false
	for i, c := range nodes {
		sets[i] = c.node.Keywords
		hasKeywords = hasKeywords || len(c.node.Keywords) > 0
	}
	if !hasKeywords {
		return nil
	}
	var opts []prefilter.Option
	if r.cfg.matcher.CaseInsensitive || r.cfg.matcher.CaseSmart {
		opts = append(opts, prefilter.WithFoldCase())
	}
	return prefilter.New(sets, opts...)
}

func (r *resolver) release() {
	for pattern, m := range r.matchers {
		if err := matcher.Release(m); err != nil {
			r.cfg.logger.Debug("releasing matcher", "pattern", pattern, "error", err)
		}
	}
}

// seed offers every line to the root at offset 0.
func (r *resolver) seed(ctx context.Context, top *compiled) error {
	count := r.lines.LineCount()
	began := time.Now()

	if top.node.Pattern == "" && len(top.node.Keywords) == 0 {
		cursors := make([]types.Cursor, count)
		for i := range cursors {
			cursors[i] = types.Cursor{Line: i}
		}
		r.apply([]*compiled{top}, []expansion{{cursors: cursors, tested: count}}, time.Since(began))
		return nil
	}

	results, err := r.expand(ctx, count, func(i int) types.Cursor { return types.Cursor{Line: i} },
		[]*compiled{top}, r.prefilter([]*compiled{top}))
	if err != nil {
		return err
	}
	r.apply([]*compiled{top}, results, time.Since(began))
	return nil
}

// apply stores expansion results on their nodes.
func (r *resolver) apply(targets []*compiled, results []expansion, elapsed time.Duration) {
	for i, t := range targets {
		res := results[i]
		n := t.node
		n.Stat = Stat{Tested: res.tested, Skipped: res.skipped, Duration: elapsed, Status: StatusResolved}
		if res.err != nil {
			n.Stat.Status = StatusFailed
			n.Stat.Err = res.err
			n.Cursors = nil
		} else {
			n.Cursors = res.cursors
		}
		if r.cfg.recorder != nil {
			r.cfg.recorder.ObserveNode(n.Label, res.tested, len(n.Cursors))
		}
		r.cfg.logger.Debug("resolved node", "label", n.Label, "tested", res.tested,
			"skipped", res.skipped, "cursors", len(n.Cursors), "status", n.Stat.Status)
	}
}

// prune marks every descendant of c as pruned.
func prune(c *compiled) {
	stack := append([]*compiled(nil), c.children...)
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		d.node.Cursors = nil
		d.node.Stat = Stat{Status: StatusPruned}
		stack = append(stack, d.children...)
	}
}

// expand runs every target against count parent cursors, in parallel shards
// when configured. Shard results are merged in shard order, so the outcome
// does not depend on scheduling.
func (r *resolver) expand(ctx context.Context, count int, parent func(int) types.Cursor, targets []*compiled, pf *prefilter.Prefilter) ([]expansion, error) {
	if r.cfg.workers <= 1 || count <= r.cfg.shardSize {
		return r.scan(ctx, 0, count, parent, targets, pf)
	}

	size := r.cfg.shardSize
	shards := make([][]expansion, (count+size-1)/size)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.workers)
	for s := range shards {
		lo := s * size
		hi := min(lo+size, count)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.scan(gctx, lo, hi, parent, targets, pf)
			shards[s] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]expansion, len(targets))
	for ci := range targets {
		total := 0
		for _, shard := range shards {
			total += len(shard[ci].cursors)
		}
		m := expansion{cursors: make([]types.Cursor, 0, total)}
		for _, shard := range shards {
			e := shard[ci]
			m.cursors = append(m.cursors, e.cursors...)
			m.tested += e.tested
			m.skipped += e.skipped
			if m.err == nil {
				m.err = e.err
			}
		}
		merged[ci] = m
	}
	return merged, nil
}

// checkEvery is how many parent cursors a shard processes between context checks.
const checkEvery = 1024

// scan resolves parent cursors [lo, hi) against targets.
func (r *resolver) scan(ctx context.Context, lo, hi int, parent func(int) types.Cursor, targets []*compiled, pf *prefilter.Prefilter) ([]expansion, error) {
	res := make([]expansion, len(targets))
	for i := lo; i < hi; i++ {
		if (i-lo)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pc := parent(i)
		line, ok := r.lines.Line(pc.Line)
		if !ok {
			continue
		}

		var candidates []int
		if pf != nil {
			candidates = pf.Candidates(line)
		}
		next := 0
		for ci, t := range targets {
			if pf != nil {
				if next >= len(candidates) || candidates[next] != ci {
					res[ci].skipped++
					continue
				}
				next++
			}
			if res[ci].err != nil {
				continue
			}

			res[ci].tested++
			m, found, err := t.m.FindAt(line, pc.Offset)
			if err != nil {
				err = &ResolveError{
					Label:   t.node.Label,
					Pattern: t.node.Pattern,
					Err:     &matcher.MatchError{Offset: pc.Offset, Err: fmt.Errorf("line %d: %w", pc.Line, err)},
				}
				if !r.cfg.tolerant {
					return nil, err
				}
				res[ci].err = err
				continue
			}
			if found {
				res[ci].cursors = append(res[ci].cursors, types.Cursor{Line: pc.Line, Offset: m.Start})
			}
		}
	}
	return res, nil
}
