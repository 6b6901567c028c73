package lineindex

import "runtime"

// DefaultParallelThreshold is the buffer size from which Build scans in
// parallel chunks.
const DefaultParallelThreshold = 1 << 30

// Recorder receives index construction statistics.
type Recorder interface {
	ObserveIndex(bytes, lines int)
}

type config struct {
	parallelThreshold int
	workers           int
	metrics           Recorder
}

func defaultConfig() config {
	return config{
		parallelThreshold: DefaultParallelThreshold,
		workers:           runtime.GOMAXPROCS(0),
	}
}

// Option configures Build.
type Option func(*config)

// WithParallelThreshold sets the buffer size from which Build scans in
// parallel. Zero or a negative value disables parallel scanning.
func WithParallelThreshold(n int) Option {
	return func(c *config) {
		c.parallelThreshold = n
	}
}

// WithWorkers sets the number of chunks scanned concurrently.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRecorder reports index statistics to r.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		c.metrics = r
	}
}
