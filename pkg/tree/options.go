package tree

import (
	"log/slog"
	"time"

	"github.com/praetorian-inc/logmap/pkg/logging"
	"github.com/praetorian-inc/logmap/pkg/matcher"
)

// DefaultShardSize is the number of parent cursors one worker resolves at a
// time when resolution runs in parallel.
const DefaultShardSize = 4096

// Recorder receives resolution measurements. *metrics.Metrics implements it.
type Recorder interface {
	ObserveResolve(d time.Duration)
	ObserveNode(label string, tested, cursors int)
}

// Option configures Resolve.
type Option func(*config)

type config struct {
	matcher   matcher.Config
	workers   int
	shardSize int
	logger    *slog.Logger
	recorder  Recorder
	prefilter bool
	tolerant  bool
}

func newConfig(opts []Option) config {
	cfg := config{
		matcher:   matcher.DefaultConfig(),
		workers:   1,
		shardSize: DefaultShardSize,
		logger:    logging.Noop(),
		prefilter: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	if cfg.shardSize < 1 {
		cfg.shardSize = DefaultShardSize
	}
	return cfg
}

// WithMatcherConfig sets the configuration every node's pattern is compiled with.
func WithMatcherConfig(c matcher.Config) Option {
	return func(cfg *config) { cfg.matcher = c }
}

// WithWorkers resolves each node's cursors in parallel shards. Results are
// identical to a sequential resolution.
func WithWorkers(n int) Option {
	return func(cfg *config) { cfg.workers = n }
}

// WithShardSize sets how many parent cursors make up one parallel shard.
func WithShardSize(n int) Option {
	return func(cfg *config) { cfg.shardSize = n }
}

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = logging.OrNoop(l) }
}

// WithRecorder reports measurements to r.
func WithRecorder(r Recorder) Option {
	return func(cfg *config) { cfg.recorder = r }
}

// WithoutPrefilter runs every child pattern on every parent cursor, ignoring
// keywords.
func WithoutPrefilter() Option {
	return func(cfg *config) { cfg.prefilter = false }
}

// WithTolerant keeps resolving when a matcher fails: the failing node is
// marked StatusFailed, keeps no cursors and its subtree is pruned.
// Compile errors are still fatal.
func WithTolerant() Option {
	return func(cfg *config) { cfg.tolerant = true }
}
