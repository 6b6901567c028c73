package matcher

import "time"

// Engine selects the implementation New builds.
type Engine string

const (
	// EngineRegexp2 is the pure Go, Perl-compatible regexp2 engine.
	EngineRegexp2 Engine = "regexp2"
	// EngineLiteral searches for the pattern as a fixed string.
	EngineLiteral Engine = "literal"
	// EngineHyperscan uses Hyperscan to rule out non-matching content and
	// regexp2 for exact match bounds. Requires CGO and the hyperscan build tag.
	EngineHyperscan Engine = "hyperscan"
)

// Config is passed unmodified to the engine builder selected by Engine.
type Config struct {
	Engine Engine

	CaseInsensitive bool
	// CaseSmart makes the pattern case insensitive unless it contains an
	// uppercase character.
	CaseSmart         bool
	MultiLine         bool // ^ and $ match at line boundaries
	DotMatchesNewLine bool
	SwapGreed         bool // quantifiers are lazy by default, x*? is greedy
	IgnoreWhitespace  bool // free-spacing pattern syntax with # comments
	Unicode           bool
	Octal             bool

	// SizeLimit bounds the compiled program size in bytes.
	SizeLimit int
	// DFASizeLimit bounds automaton memory for engines that build one.
	DFASizeLimit int
	// NestLimit bounds group nesting depth in the pattern.
	NestLimit int
	// MatchTimeout bounds a single search (regexp2 only; 0 disables).
	MatchTimeout time.Duration
}

// DefaultConfig returns production defaults. The size limits are far more
// generous than typical regex defaults because log rules are often large
// alternations.
func DefaultConfig() Config {
	return Config{
		Engine:       EngineRegexp2,
		Unicode:      true,
		SizeLimit:    100 * (1 << 20),
		DFASizeLimit: 1000 * (1 << 20),
		NestLimit:    250,
		MatchTimeout: 5 * time.Second,
	}
}

// caseInsensitive resolves CaseInsensitive and CaseSmart for pattern.
func (c Config) caseInsensitive(pattern string) bool {
	if c.CaseInsensitive {
		return true
	}
	return c.CaseSmart && !hasUppercase(pattern)
}
