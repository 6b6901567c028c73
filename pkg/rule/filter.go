package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praetorian-inc/logmap/pkg/types"
)

// FilterConfig selects rules by ID.
type FilterConfig struct {
	Include []string // regexes; a top-level rule is kept when it or a descendant matches
	Exclude []string // regexes; matching rules are removed at any depth with their subtrees
}

// ParsePatterns splits a comma-separated flag value into trimmed patterns.
func ParsePatterns(patterns string) []string {
	result := []string{}
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Filter applies include then exclude patterns. Rules are never modified:
// a rule that loses descendants to an exclude pattern is returned as a
// shallow copy.
func Filter(rules []*types.Rule, config FilterConfig) ([]*types.Rule, error) {
	include, err := compileAll(config.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(config.Exclude)
	if err != nil {
		return nil, err
	}

	result := make([]*types.Rule, 0, len(rules))
	for _, r := range rules {
		if len(include) > 0 && !anyIDMatches(r, include) {
			continue
		}
		if kept := without(r, exclude); kept != nil {
			result = append(result, kept)
		}
	}
	return result, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func matchesAny(id string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}

func anyIDMatches(r *types.Rule, regexes []*regexp.Regexp) bool {
	found := false
	r.Walk(func(rule *types.Rule, _ int) bool {
		if matchesAny(rule.ID, regexes) {
			found = true
		}
		return !found
	})
	return found
}

// without returns r minus every subtree whose root ID matches exclude, or
// nil when r itself matches.
func without(r *types.Rule, exclude []*regexp.Regexp) *types.Rule {
	if matchesAny(r.ID, exclude) {
		return nil
	}
	if len(exclude) == 0 || len(r.Children) == 0 {
		return r
	}
	children := make([]*types.Rule, 0, len(r.Children))
	changed := false
	for _, c := range r.Children {
		kept := without(c, exclude)
		if kept != c {
			changed = true
		}
		if kept != nil {
			children = append(children, kept)
		}
	}
	if !changed {
		return r
	}
	cp := *r
	cp.Children = children
	return &cp
}
