package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/praetorian-inc/logmap/pkg/matcher"
	"github.com/praetorian-inc/logmap/pkg/rule"
	"github.com/praetorian-inc/logmap/pkg/types"
	"github.com/spf13/cobra"
)

var (
	rulesPath    string
	outputFormat string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage classification rules",
	Long:  "Commands for listing and checking classification rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rules",
	Long:  "Display the rule hierarchy with IDs, labels and patterns",
	RunE:  runRulesList,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate rules",
	Long:  "Compile every rule pattern and test it against the rule's examples",
	RunE:  runRulesCheck,
}

func init() {
	rulesCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Path to custom rules file or directory")
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesListCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(rulesPath, "", "")
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		return outputRulesJSON(cmd, rules)
	case "table":
		return outputRulesTable(cmd, rules)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(rulesPath, "", "")
	if err != nil {
		return err
	}

	if err := rule.ValidateRules(rules, matcher.DefaultConfig()); err != nil {
		return fmt.Errorf("validating rules: %w", err)
	}

	count := 0
	for _, r := range rules {
		count += r.Count()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d rules OK\n", count)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func loadRules(path, include, exclude string) ([]*types.Rule, error) {
	loader := rule.NewLoader()

	var rules []*types.Rule
	var err error

	if path != "" {
		rules, err = loader.LoadRulesPath(path)
		if err != nil {
			return nil, fmt.Errorf("loading rules from %s: %w", path, err)
		}
	} else {
		rules, err = loader.LoadBuiltinRules()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
	}

	if include != "" || exclude != "" {
		config := rule.FilterConfig{
			Include: rule.ParsePatterns(include),
			Exclude: rule.ParsePatterns(exclude),
		}
		rules, err = rule.Filter(rules, config)
		if err != nil {
			return nil, fmt.Errorf("filtering rules: %w", err)
		}
	}

	return rules, nil
}

func outputRulesJSON(cmd *cobra.Command, rules []*types.Rule) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(rules)
}

func outputRulesTable(cmd *cobra.Command, rules []*types.Rule) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tLabel\tPattern\n")
	fmt.Fprintf(w, "--\t-----\t-------\n")

	for _, top := range rules {
		top.Walk(func(r *types.Rule, depth int) bool {
			fmt.Fprintf(w, "%s%s\t%s\t%s\n", strings.Repeat("  ", depth), r.ID, r.Label, truncate(r.Pattern, 60))
			return true
		})
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
