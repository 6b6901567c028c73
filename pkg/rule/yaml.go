package rule

// yamlRule is the on-disk form of a rule. Children nest to any depth.
type yamlRule struct {
	ID               string     `yaml:"id"`
	Label            string     `yaml:"label"`
	Pattern          string     `yaml:"pattern"`
	Description      string     `yaml:"description,omitempty"`
	Keywords         []string   `yaml:"keywords,omitempty"`
	Examples         []string   `yaml:"examples,omitempty"`
	NegativeExamples []string   `yaml:"negative_examples,omitempty"`
	Categories       []string   `yaml:"categories,omitempty"`
	Children         []yamlRule `yaml:"children,omitempty"`
}

// yamlRulesFile is the top-level structure of a rules file.
type yamlRulesFile struct {
	Rules []yamlRule `yaml:"rules"`
}
