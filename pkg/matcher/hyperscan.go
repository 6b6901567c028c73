//go:build cgo && hyperscan

package matcher

import (
	"errors"
	"fmt"
	"sync"

	"github.com/flier/gohs/hyperscan"
	"github.com/praetorian-inc/logmap/pkg/types"
)

// HyperscanMatcher is a two-stage matcher:
//  1. Hyperscan decides whether any match can end at or after the search
//     offset (fast, no start-of-match tracking)
//  2. regexp2 finds the exact bounds when stage 1 reports one
//
// Stage 1 scans the whole content so anchors and word boundaries see the
// same context stage 2 does.
type HyperscanMatcher struct {
	db      hyperscan.BlockDatabase
	scratch sync.Pool
	proto   *hyperscan.Scratch
	exact   *Regexp2Matcher

	mu     sync.Mutex
	clones []*hyperscan.Scratch
}

var errStopScan = errors.New("stop scan")

// HyperscanAvailable reports whether this build includes the Hyperscan engine.
func HyperscanAvailable() bool {
	return true
}

func newHyperscan(expr string, cfg Config, foldCase bool) (*HyperscanMatcher, error) {
	exact, err := newRegexp2(expr, cfg, foldCase)
	if err != nil {
		return nil, err
	}

	flags := hyperscan.AllowEmpty | hyperscan.Utf8Mode
	if cfg.Unicode {
		flags |= hyperscan.UnicodeProperty
	}
	if foldCase {
		flags |= hyperscan.Caseless
	}
	if cfg.MultiLine {
		flags |= hyperscan.MultiLine
	}
	if cfg.DotMatchesNewLine {
		flags |= hyperscan.DotAll
	}

	db, err := hyperscan.NewBlockDatabase(hyperscan.NewPattern(expr, flags))
	if err != nil {
		// Prefilter mode approximates constructs Hyperscan cannot compile
		// (backreferences, lookaround) with a superset; stage 2 is exact.
		db, err = hyperscan.NewBlockDatabase(hyperscan.NewPattern(expr, flags|hyperscan.PrefilterMode))
		if err != nil {
			return nil, fmt.Errorf("hyperscan: %w", err)
		}
	}
	proto, err := hyperscan.NewScratch(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("hyperscan scratch: %w", err)
	}

	m := &HyperscanMatcher{db: db, proto: proto, exact: exact}
	m.scratch.New = func() any {
		s, err := m.proto.Clone()
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.clones = append(m.clones, s)
		m.mu.Unlock()
		return s
	}
	return m, nil
}

// FindAt implements Matcher.
func (m *HyperscanMatcher) FindAt(content []byte, at int) (types.ByteRange, bool, error) {
	if at < 0 || at > len(content) {
		return types.ByteRange{}, false, nil
	}
	found, err := m.mayMatch(content, at)
	if err != nil || !found {
		return types.ByteRange{}, false, err
	}
	return m.exact.FindAt(content, at)
}

func (m *HyperscanMatcher) mayMatch(content []byte, at int) (bool, error) {
	found := false
	err := m.scan(content, func(to int) bool {
		found = to >= at
		return !found
	})
	return found, err
}

// scan reports the end offset of every candidate match to onEnd until it
// returns false.
func (m *HyperscanMatcher) scan(content []byte, onEnd func(to int) bool) error {
	v := m.scratch.Get()
	scratch, ok := v.(*hyperscan.Scratch)
	if !ok {
		return fmt.Errorf("hyperscan scratch: %w", v.(error))
	}
	defer m.scratch.Put(scratch)

	stopped := false
	onMatch := func(id uint, from, to uint64, flags uint, context interface{}) error {
		if !onEnd(int(to)) {
			stopped = true
			return errStopScan
		}
		return nil
	}
	if err := m.db.Scan(content, scratch, onMatch, nil); err != nil && !stopped {
		return fmt.Errorf("hyperscan scan: %w", err)
	}
	return nil
}

// Prepare implements Preparer. A single Hyperscan pass records where the
// last candidate match ends; searches beyond it report no match without
// running the exact engine.
func (m *HyperscanMatcher) Prepare(content []byte) (Prepared, error) {
	last := -1
	err := m.scan(content, func(to int) bool {
		last = max(last, to)
		return true
	})
	if err != nil {
		return nil, err
	}
	s := &hyperscanSearch{last: last}
	if last >= 0 {
		s.exact = m.exact.prepare(content)
	}
	return s, nil
}

type hyperscanSearch struct {
	exact *regexp2Search
	last  int
}

func (s *hyperscanSearch) FindAt(at int) (types.ByteRange, bool, error) {
	if s.exact == nil || at > s.last {
		return types.ByteRange{}, false, nil
	}
	return s.exact.FindAt(at)
}

func (s *hyperscanSearch) Release() {
	if s.exact != nil {
		s.exact.Release()
	}
}

// Close frees the Hyperscan database and every scratch space. The matcher
// must not be used afterwards.
func (m *HyperscanMatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for _, s := range m.clones {
		errs = append(errs, s.Free())
	}
	m.clones = nil
	errs = append(errs, m.proto.Free(), m.db.Close())
	return errors.Join(errs...)
}
