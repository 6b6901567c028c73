package matcher

import (
	"fmt"
	"io"
	"log/slog"
)

// New builds a Matcher for pattern. cfg is passed to the engine unmodified
// apart from the shared preprocessing every engine gets: smart case
// resolution, free-spacing removal, nesting and size limits, and greed
// swapping. Failures are returned as *CompileError.
func New(pattern string, cfg Config) (Matcher, error) {
	if cfg.Engine == "" {
		cfg.Engine = EngineRegexp2
	}
	compileErr := func(err error) error {
		return &CompileError{Pattern: pattern, Engine: cfg.Engine, Err: err}
	}

	foldCase := cfg.caseInsensitive(pattern)
	if cfg.Engine == EngineLiteral {
		if cfg.IgnoreWhitespace {
			return nil, compileErr(fmt.Errorf("%w: IgnoreWhitespace", ErrUnsupportedOption))
		}
		return newLiteral(pattern, foldCase), nil
	}

	expr := pattern
	if usesFreeSpacing(expr, cfg) {
		expr = stripFreeSpacing(expr)
	}
	if err := checkNest(expr, cfg.NestLimit); err != nil {
		return nil, compileErr(err)
	}
	if err := checkSize(expr, foldCase, cfg.SizeLimit); err != nil {
		return nil, compileErr(err)
	}
	if cfg.SwapGreed {
		expr = swapGreed(expr)
	}

	slog.Debug("compiling pattern", "engine", cfg.Engine, "pattern", pattern, "fold_case", foldCase)

	var (
		m   Matcher
		err error
	)
	switch cfg.Engine {
	case EngineRegexp2:
		m, err = newRegexp2(expr, cfg, foldCase)
	case EngineHyperscan:
		m, err = newHyperscan(expr, cfg, foldCase)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
	if err != nil {
		return nil, compileErr(err)
	}
	return m, nil
}

// MustNew is like New but panics on error.
func MustNew(pattern string, cfg Config) Matcher {
	m, err := New(pattern, cfg)
	if err != nil {
		panic(err)
	}
	return m
}

// Engines lists the engines available in this build.
func Engines() []Engine {
	engines := []Engine{EngineRegexp2, EngineLiteral}
	if HyperscanAvailable() {
		engines = append(engines, EngineHyperscan)
	}
	return engines
}

// Release frees engine resources held outside the Go heap. Matchers without
// any are left alone.
func Release(m Matcher) error {
	if c, ok := m.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
