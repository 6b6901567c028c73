package rule

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/praetorian-inc/logmap/pkg/matcher"
	"github.com/praetorian-inc/logmap/pkg/types"
)

var (
	validateOnce sync.Once
	structs      *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structs = validator.New(validator.WithRequiredStructEnabled())
	})
	return structs
}

// ValidateRule checks r and its descendants: required fields, that each
// pattern compiles with cfg, that examples match and negative examples do
// not, and that stored structural IDs are current.
func ValidateRule(r *types.Rule, cfg matcher.Config) error {
	if r == nil {
		return fmt.Errorf("rule is nil")
	}
	if err := structValidator().Struct(r); err != nil {
		return describeStructError(r, err)
	}

	var errs []error
	r.Walk(func(rule *types.Rule, _ int) bool {
		if err := validatePattern(rule, cfg); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

// ValidateRules validates every rule and rejects IDs used more than once
// anywhere in the hierarchies.
func ValidateRules(rules []*types.Rule, cfg matcher.Config) error {
	var errs []error
	seen := make(map[string]bool)
	for _, r := range rules {
		if err := ValidateRule(r, cfg); err != nil {
			errs = append(errs, err)
			continue
		}
		r.Walk(func(rule *types.Rule, _ int) bool {
			if seen[rule.ID] {
				errs = append(errs, fmt.Errorf("duplicate rule ID: %s", rule.ID))
			}
			seen[rule.ID] = true
			return true
		})
	}
	return errors.Join(errs...)
}

func validatePattern(r *types.Rule, cfg matcher.Config) error {
	if expected := r.ComputeStructuralID(); r.StructuralID != "" && r.StructuralID != expected {
		return fmt.Errorf("rule %s has inconsistent StructuralID: got %s, expected %s",
			r.ID, r.StructuralID, expected)
	}

	m, err := matcher.New(r.Pattern, cfg)
	if err != nil {
		return fmt.Errorf("invalid pattern for rule %s: %w", r.ID, err)
	}
	defer matcher.Release(m)

	for _, ex := range r.Examples {
		ok, err := matcher.IsMatch(m, []byte(ex))
		if err != nil {
			return fmt.Errorf("rule %s: matching example %q: %w", r.ID, ex, err)
		}
		if !ok {
			return fmt.Errorf("rule %s: example does not match: %q", r.ID, ex)
		}
	}
	for _, ex := range r.NegativeExamples {
		ok, err := matcher.IsMatch(m, []byte(ex))
		if err != nil {
			return fmt.Errorf("rule %s: matching negative example %q: %w", r.ID, ex, err)
		}
		if ok {
			return fmt.Errorf("rule %s: negative example matches: %q", r.ID, ex)
		}
	}
	return nil
}

// describeStructError turns validator output into a readable error naming
// the offending fields.
func describeStructError(r *types.Rule, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Namespace(), fe.Tag()))
	}
	id := r.ID
	if id == "" {
		id = "(no id)"
	}
	return fmt.Errorf("rule %s: %s", id, strings.Join(msgs, "; "))
}
