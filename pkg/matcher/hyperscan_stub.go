//go:build !cgo || !hyperscan

package matcher

import "fmt"

// HyperscanAvailable reports whether this build includes the Hyperscan engine.
func HyperscanAvailable() bool {
	return false
}

func newHyperscan(string, Config, bool) (Matcher, error) {
	return nil, fmt.Errorf("%w: hyperscan requires CGO (build with CGO_ENABLED=1 and -tags=hyperscan)", ErrUnknownEngine)
}
