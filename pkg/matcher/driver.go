package matcher

import (
	"fmt"

	"github.com/praetorian-inc/logmap/pkg/types"
)

// FindIter reports every successive match in content to matched until
// matched returns false, the content is exhausted or no match remains.
func FindIter(m Matcher, content []byte, matched func(types.ByteRange) bool) error {
	return TryFindIter(m, content, func(r types.ByteRange) (bool, error) {
		return matched(r), nil
	})
}

// TryFindIter is FindIter with a fallible callback.
//
// Errors from the matcher are returned as *MatchError. Errors returned by
// matched are returned unchanged, so callers can tell the two apart with
// errors.As. Either kind stops the iteration immediately.
//
// After a zero-width match the next search starts one byte further, and a
// zero-width match ending where the previous reported match ended is
// skipped. Every search position is strictly greater than the previous one,
// so at most len(content)+1 searches are made. If m implements Preparer the
// content is prepared once for the whole iteration.
func TryFindIter(m Matcher, content []byte, matched func(types.ByteRange) (bool, error)) error {
	search := func(at int) (types.ByteRange, bool, error) {
		return m.FindAt(content, at)
	}
	if p, ok := m.(Preparer); ok {
		prepared, err := p.Prepare(content)
		if err != nil {
			return &MatchError{Offset: 0, Err: err}
		}
		defer prepared.Release()
		search = prepared.FindAt
	}

	lastEnd := 0
	lastMatchEnd := -1
	for {
		if lastEnd > len(content) {
			return nil
		}
		r, ok, err := search(lastEnd)
		if err != nil {
			return &MatchError{Offset: lastEnd, Err: err}
		}
		if !ok {
			return nil
		}
		if r.Start < lastEnd || r.Start > r.End || r.End > len(content) {
			return &MatchError{Offset: lastEnd, Err: fmt.Errorf("%w: %s in %d bytes", ErrInvalidMatch, r, len(content))}
		}

		if r.IsEmpty() {
			lastEnd = r.End + 1
			if r.End == lastMatchEnd {
				continue
			}
		} else {
			lastEnd = r.End
		}
		lastMatchEnd = r.End

		keep, err := matched(r)
		if err != nil {
			return err
		}
		if !keep {
			return nil
		}
	}
}

// FindAll collects every match in content.
func FindAll(m Matcher, content []byte) ([]types.ByteRange, error) {
	var matches []types.ByteRange
	err := FindIter(m, content, func(r types.ByteRange) bool {
		matches = append(matches, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
