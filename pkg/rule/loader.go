package rule

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/logmap/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader reads rule hierarchies from YAML.
type Loader struct {
	fs fs.FS // built-in rules
}

// NewLoader creates a loader over the embedded built-in rules.
func NewLoader() *Loader {
	return &Loader{fs: builtinRulesFS}
}

// NewLoaderWithFS creates a loader whose built-in rules come from fsys.
// fsys must contain a "rules" directory.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{fs: fsys}
}

// LoadRules parses every top-level rule in data.
func (l *Loader) LoadRules(data []byte) ([]*types.Rule, error) {
	var file yamlRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	rules := make([]*types.Rule, 0, len(file.Rules))
	for _, yr := range file.Rules {
		rules = append(rules, convertYAMLRule(yr))
	}
	return rules, nil
}

// LoadRule parses data holding exactly one top-level rule.
func (l *Loader) LoadRule(data []byte) (*types.Rule, error) {
	rules, err := l.LoadRules(data)
	if err != nil {
		return nil, err
	}
	switch len(rules) {
	case 0:
		return nil, fmt.Errorf("no rules found in YAML")
	case 1:
		return rules[0], nil
	default:
		return nil, fmt.Errorf("expected single rule, found %d", len(rules))
	}
}

// LoadRuleFile loads the rules in one YAML file.
func (l *Loader) LoadRuleFile(path string) ([]*types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	rules, err := l.LoadRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// LoadRulesPath loads a rules file, or every .yml and .yaml file below a
// directory in lexical order.
func (l *Loader) LoadRulesPath(path string) ([]*types.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return l.LoadRuleFile(path)
	}
	return l.loadDir(os.DirFS(path), ".")
}

// LoadBuiltinRules loads the built-in rules.
func (l *Loader) LoadBuiltinRules() ([]*types.Rule, error) {
	return l.loadDir(l.fs, "rules")
}

func (l *Loader) loadDir(fsys fs.FS, root string) ([]*types.Rule, error) {
	var rules []*types.Rule
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isRuleFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		loaded, err := l.LoadRules(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		rules = append(rules, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func isRuleFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}

// convertYAMLRule converts a yamlRule tree to types.Rule, computing
// structural IDs.
func convertYAMLRule(yr yamlRule) *types.Rule {
	r := &types.Rule{
		ID:               yr.ID,
		Label:            yr.Label,
		Pattern:          yr.Pattern,
		Description:      yr.Description,
		Keywords:         yr.Keywords,
		Examples:         yr.Examples,
		NegativeExamples: yr.NegativeExamples,
		Categories:       yr.Categories,
	}
	r.StructuralID = r.ComputeStructuralID()
	for _, c := range yr.Children {
		r.Children = append(r.Children, convertYAMLRule(c))
	}
	return r
}
