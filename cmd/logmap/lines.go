package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/praetorian-inc/logmap"
	"github.com/praetorian-inc/logmap/pkg/tree"
	"github.com/spf13/cobra"
)

var (
	linesStart   int
	linesCount   int
	linesNumbers bool
)

var linesCmd = &cobra.Command{
	Use:   "lines <file>",
	Short: "Print a range of lines",
	Long:  "Print lines by zero-based line number using the line index, without reading the rest of the file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLines,
}

var countCmd = &cobra.Command{
	Use:   "count <file> [rule-id...]",
	Short: "Count lines per rule",
	Long:  "Resolve the rules against a log file and print how many lines each rule matched",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCount,
}

func init() {
	linesCmd.Flags().IntVar(&linesStart, "start", 0, "First line to print (zero-based)")
	linesCmd.Flags().IntVar(&linesCount, "count", 10, "Number of lines to print")
	linesCmd.Flags().BoolVarP(&linesNumbers, "line-numbers", "n", false, "Prefix each line with its number")

	countCmd.Flags().StringVar(&scanRulesPath, "rules", "", "Path to custom rules file or directory")
}

func runLines(cmd *cobra.Command, args []string) error {
	lm, err := logmap.Open(args[0], logmap.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}
	defer lm.Close()

	out := cmd.OutOrStdout()
	for i, line := range lm.Lines(linesStart, linesCount) {
		if linesNumbers {
			fmt.Fprintf(out, "%d\t", linesStart+i)
		}
		fmt.Fprintf(out, "%s\n", strings.TrimSuffix(string(line), "\r"))
	}
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(scanRulesPath, "", "")
	if err != nil {
		return err
	}

	lm, err := logmap.Open(args[0], logmap.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}
	defer lm.Close()

	root, err := lm.ResolveRules(commandContext(cmd), rules)
	if err != nil {
		return fmt.Errorf("resolving rules: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Rule\tLines\n")
	fmt.Fprintf(w, "----\t-----\n")

	if len(args) > 1 {
		for _, id := range args[1:] {
			n := root.Find(id)
			if n == nil {
				return fmt.Errorf("unknown rule: %s", id)
			}
			fmt.Fprintf(w, "%s\t%d\n", n.ID, n.LineSet().GetCardinality())
		}
		return nil
	}

	root.Walk(func(n *tree.Node, depth int) bool {
		name := n.ID
		if depth == 0 {
			name = n.Label
		}
		fmt.Fprintf(w, "%s%s\t%d\n", strings.Repeat("  ", depth), name, n.LineSet().GetCardinality())
		return true
	})
	return nil
}
