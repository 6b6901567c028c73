package matcher

import "github.com/praetorian-inc/logmap/pkg/types"

// Matcher finds the first match of a pattern in content at or after the
// byte offset at. Returned ranges are relative to content.
//
// Everything else in this package (Find, IsMatch, ShortestMatchAt,
// FindIter, ...) is built on this single primitive.
type Matcher interface {
	FindAt(content []byte, at int) (types.ByteRange, bool, error)
}

// Preparer is implemented by matchers that do per-content work before
// searching. TryFindIter prepares content once and runs every search of an
// iteration against the result.
type Preparer interface {
	Prepare(content []byte) (Prepared, error)
}

// Prepared searches the content it was prepared from. Offsets are byte
// offsets into that content. Release must be called when done.
type Prepared interface {
	FindAt(at int) (types.ByteRange, bool, error)
	Release()
}

// Func adapts a plain function to the Matcher interface.
type Func func(content []byte, at int) (types.ByteRange, bool, error)

// FindAt calls f(content, at).
func (f Func) FindAt(content []byte, at int) (types.ByteRange, bool, error) {
	return f(content, at)
}

// Find returns the first match in content.
func Find(m Matcher, content []byte) (types.ByteRange, bool, error) {
	return m.FindAt(content, 0)
}

// IsMatch reports whether content contains a match.
func IsMatch(m Matcher, content []byte) (bool, error) {
	return IsMatchAt(m, content, 0)
}

// IsMatchAt reports whether content contains a match at or after at.
func IsMatchAt(m Matcher, content []byte, at int) (bool, error) {
	_, ok, err := m.FindAt(content, at)
	return ok, err
}

// ShortestMatch returns the end offset of the first match in content.
func ShortestMatch(m Matcher, content []byte) (int, bool, error) {
	return ShortestMatchAt(m, content, 0)
}

// ShortestMatchAt returns the end offset of the first match at or after at,
// for callers that only need existence and extent.
func ShortestMatchAt(m Matcher, content []byte, at int) (int, bool, error) {
	r, ok, err := m.FindAt(content, at)
	if err != nil || !ok {
		return 0, false, err
	}
	return r.End, true, nil
}
