// Package logmap maps a log file into memory, indexes its lines and
// classifies them with hierarchies of patterns.
//
// # Basic Usage
//
//	lm, err := logmap.Open("/var/log/app.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lm.Close()
//
//	root, err := lm.ResolveRules(ctx, rules)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, hit := range root.Hits(lm.Index()) {
//	    fmt.Printf("%s %d:%d\n", hit.Label(), hit.Cursor.Line, hit.Cursor.Offset)
//	}
//
// # Ad-hoc Search
//
// FindInRanges runs one pattern over selected line ranges and returns
// absolute file offsets:
//
//	ranges := lm.LineRanges(100, 50)
//	matches, err := lm.FindInRanges(ranges, `timeout after \d+ms`, matcher.DefaultConfig())
package logmap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/praetorian-inc/logmap/pkg/lineindex"
	"github.com/praetorian-inc/logmap/pkg/logging"
	"github.com/praetorian-inc/logmap/pkg/matcher"
	"github.com/praetorian-inc/logmap/pkg/metrics"
	"github.com/praetorian-inc/logmap/pkg/mmap"
	"github.com/praetorian-inc/logmap/pkg/rule"
	"github.com/praetorian-inc/logmap/pkg/tree"
	"github.com/praetorian-inc/logmap/pkg/types"
)

// Version is the logmap release.
const Version = "0.1.0"

// Re-export commonly used types so callers can import just this package.
type (
	Rule      = types.Rule
	Cursor    = types.Cursor
	ByteRange = types.ByteRange
	Hit       = types.Hit
	Node      = tree.Node
)

// LogMap is a memory-mapped, line-indexed log file. It is safe for
// concurrent reads; Close must not race with them.
type LogMap struct {
	path    string
	mapping *mmap.Mapping // nil for empty files
	index   *lineindex.Index
	config  *config
}

type config struct {
	logger            *slog.Logger
	metrics           *metrics.Metrics
	matcher           matcher.Config
	workers           int
	parallelThreshold int
	tolerant          bool
}

// Option configures a LogMap.
type Option func(*config)

// WithLogger sets the logger. Library output is debug level only.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = logging.OrNoop(l)
	}
}

// WithMetrics records mapping, indexing and resolution metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithMatcherConfig sets the pattern configuration used by Resolve and
// ResolveRules.
func WithMatcherConfig(cfg matcher.Config) Option {
	return func(c *config) {
		c.matcher = cfg
	}
}

// WithWorkers sets the parallelism of index construction and tree
// resolution. Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithParallelThreshold sets the file size from which the line index is
// built in parallel.
func WithParallelThreshold(n int) Option {
	return func(c *config) {
		c.parallelThreshold = n
	}
}

// WithTolerant keeps resolving when a pattern fails on some line. The
// failing node is marked failed and its subtree pruned.
func WithTolerant() Option {
	return func(c *config) {
		c.tolerant = true
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		logger:            logging.Noop(),
		matcher:           matcher.DefaultConfig(),
		workers:           1,
		parallelThreshold: lineindex.DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open maps the file at path and indexes its lines. The file stays open
// until Close.
func Open(path string, opts ...Option) (*LogMap, error) {
	cfg := newConfig(opts)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() == 0 {
		f.Close()
		return newLogMap(path, nil, cfg), nil
	}

	m, err := mmap.OpenFile(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return newLogMap(path, m, cfg), nil
}

// New maps f and indexes its lines. The caller keeps ownership of f, which
// may be closed once New returns.
func New(f *os.File, opts ...Option) (*LogMap, error) {
	cfg := newConfig(opts)

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", f.Name(), err)
	}
	if fi.Size() == 0 {
		return newLogMap(f.Name(), nil, cfg), nil
	}
	if fi.Size() > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("mapping %s: %w", f.Name(), mmap.ErrInvalidSize)
	}

	m, err := mmap.Map(f, 0, int(fi.Size()))
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", f.Name(), err)
	}
	return newLogMap(f.Name(), m, cfg), nil
}

func newLogMap(path string, m *mmap.Mapping, cfg *config) *LogMap {
	var data []byte
	if m != nil {
		data = m.Bytes()
		cfg.metrics.ObserveMapping(m.Len())
		if err := m.Advise(mmap.AccessSequential); err != nil {
			cfg.logger.Debug("madvise sequential", "path", path, "error", err)
		}
	}

	start := time.Now()
	idx := lineindex.Build(data,
		lineindex.WithParallelThreshold(cfg.parallelThreshold),
		lineindex.WithWorkers(cfg.workers),
		lineindex.WithRecorder(cfg.metrics),
	)
	cfg.metrics.ObserveIndexDuration(time.Since(start))
	cfg.logger.Debug("indexed log", "path", path, "bytes", len(data), "lines", idx.LineCount(), "elapsed", time.Since(start))

	if m != nil {
		if err := m.Advise(mmap.AccessRandom); err != nil {
			cfg.logger.Debug("madvise random", "path", path, "error", err)
		}
	}
	return &LogMap{path: path, mapping: m, index: idx, config: cfg}
}

// Close releases the mapping and the file. It is idempotent.
func (l *LogMap) Close() error {
	if l.mapping == nil {
		return nil
	}
	return l.mapping.Close()
}

// Path returns the file the log was opened from.
func (l *LogMap) Path() string {
	return l.path
}

// Bytes returns the mapped file contents, valid until Close.
func (l *LogMap) Bytes() []byte {
	if l.mapping == nil {
		return nil
	}
	return l.mapping.Bytes()
}

// Len returns the file size in bytes.
func (l *LogMap) Len() int {
	return l.index.Len()
}

// Index returns the line index.
func (l *LogMap) Index() *lineindex.Index {
	return l.index
}

// LineCount returns the number of lines.
func (l *LogMap) LineCount() int {
	return l.index.LineCount()
}

// Line returns line n without its terminator.
func (l *LogMap) Line(n int) ([]byte, bool) {
	return l.index.Line(n)
}

// Lines returns up to count lines starting at line start, clipped at the
// end of the file. It is empty when start is out of range.
func (l *LogMap) Lines(start, count int) [][]byte {
	return l.index.Lines(start, count)
}

// LineRanges returns the byte ranges of up to count lines starting at
// line start.
func (l *LogMap) LineRanges(start, count int) []ByteRange {
	return l.index.LineRanges(start, count)
}

// LineOf returns the line containing the absolute byte offset.
func (l *LogMap) LineOf(offset int) (int, bool) {
	return l.index.LineOf(offset)
}

// FindInRanges returns every match of pattern inside each range, in range
// order, translated to absolute file offsets. Ranges must lie within the
// file.
func (l *LogMap) FindInRanges(ranges []ByteRange, pattern string, cfg matcher.Config) ([]ByteRange, error) {
	m, err := matcher.New(pattern, cfg)
	if err != nil {
		return nil, err
	}
	defer matcher.Release(m)

	data := l.Bytes()
	var out []ByteRange
	for _, r := range ranges {
		if r.Start < 0 || r.Start > r.End || r.End > len(data) {
			return nil, fmt.Errorf("%w: %s of %d bytes", mmap.ErrOutOfBounds, r, len(data))
		}
		var offsetErr error
		err := matcher.FindIter(m, r.Slice(data), func(match ByteRange) bool {
			abs, err := match.Offset(r.Start)
			if err != nil {
				offsetErr = err
				return false
			}
			out = append(out, abs)
			return true
		})
		if err != nil {
			return nil, err
		}
		if offsetErr != nil {
			return nil, offsetErr
		}
	}
	return out, nil
}

// Resolve fills root's cursors from the log's lines.
func (l *LogMap) Resolve(ctx context.Context, root *Node) error {
	opts := []tree.Option{
		tree.WithMatcherConfig(l.config.matcher),
		tree.WithWorkers(l.config.workers),
		tree.WithLogger(l.config.logger),
		tree.WithRecorder(l.recorder()),
	}
	if l.config.tolerant {
		opts = append(opts, tree.WithTolerant())
	}
	return tree.Resolve(ctx, l.index, root, opts...)
}

// recorder avoids handing tree a non-nil interface holding a nil pointer.
func (l *LogMap) recorder() tree.Recorder {
	if l.config.metrics == nil {
		return nil
	}
	return l.config.metrics
}

// ResolveRules builds a tree with one child per rule under a root holding
// every line, resolves it and returns the root.
func (l *LogMap) ResolveRules(ctx context.Context, rules []*Rule) (*Node, error) {
	root := tree.FromRules(filepath.Base(l.path), rules)
	if err := l.Resolve(ctx, root); err != nil {
		return nil, err
	}
	return root, nil
}

// LoadBuiltinRules returns the built-in rules.
func LoadBuiltinRules() ([]*Rule, error) {
	return rule.NewLoader().LoadBuiltinRules()
}

// LoadRules loads rules from a YAML file or a directory of them.
func LoadRules(path string) ([]*Rule, error) {
	return rule.NewLoader().LoadRulesPath(path)
}
