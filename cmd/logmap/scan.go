package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/praetorian-inc/logmap"
	"github.com/praetorian-inc/logmap/pkg/matcher"
	"github.com/praetorian-inc/logmap/pkg/metrics"
	"github.com/praetorian-inc/logmap/pkg/sarif"
	"github.com/praetorian-inc/logmap/pkg/serve"
	"github.com/praetorian-inc/logmap/pkg/tree"
	"github.com/praetorian-inc/logmap/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	scanRulesPath    string
	scanRulesInclude string
	scanRulesExclude string
	scanOutputFormat string
	scanColor        string
	scanEngine       string
	scanIgnoreCase   bool
	scanSmartCase    bool
	scanMultiLine    bool
	scanDotAll       bool
	scanTimeout      time.Duration
	scanWorkers      int
	scanMaxHits      int
	scanTolerant     bool
	scanMetricsPath  string
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Classify the lines of a log file",
	Long:  "Resolve a rule hierarchy against every line of a log file and report the lines each rule matched",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanRulesPath, "rules", "", "Path to custom rules file or directory")
	scanCmd.Flags().StringVar(&scanRulesInclude, "rules-include", "", "Include rules matching regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanRulesExclude, "rules-exclude", "", "Exclude rules matching regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: human, json, sarif")
	scanCmd.Flags().StringVar(&scanColor, "color", "auto", "Color output: auto, always, never")
	scanCmd.Flags().StringVar(&scanEngine, "engine", string(matcher.EngineRegexp2), "Pattern engine: regexp2, literal, hyperscan")
	scanCmd.Flags().BoolVarP(&scanIgnoreCase, "ignore-case", "i", false, "Match case-insensitively")
	scanCmd.Flags().BoolVarP(&scanSmartCase, "smart-case", "S", false, "Ignore case unless the pattern has uppercase characters")
	scanCmd.Flags().BoolVar(&scanMultiLine, "multi-line", false, "^ and $ match at line boundaries")
	scanCmd.Flags().BoolVar(&scanDotAll, "dot-all", false, ". matches newlines")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Second, "Maximum time for a single pattern search (0 to disable)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", runtime.GOMAXPROCS(0), "Number of concurrent workers")
	scanCmd.Flags().IntVar(&scanMaxHits, "max-hits", 100, "Maximum hits to print in human format (0 for all)")
	scanCmd.Flags().BoolVar(&scanTolerant, "tolerant", false, "Mark rules that fail while matching instead of aborting")
	scanCmd.Flags().StringVar(&scanMetricsPath, "metrics", "", "Write Prometheus metrics in text format to this file")
}

func runScan(cmd *cobra.Command, args []string) error {
	target := args[0]
	logger := newLogger(cmd)

	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("target does not exist: %s", target)
	}

	rules, err := loadRules(scanRulesPath, scanRulesInclude, scanRulesExclude)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return fmt.Errorf("no rules selected")
	}

	reg := prometheus.NewRegistry()
	opts := []logmap.Option{
		logmap.WithLogger(logger),
		logmap.WithMetrics(metrics.New(reg)),
		logmap.WithMatcherConfig(scanMatcherConfig()),
		logmap.WithWorkers(scanWorkers),
	}
	if scanTolerant {
		opts = append(opts, logmap.WithTolerant())
	}

	lm, err := logmap.Open(target, opts...)
	if err != nil {
		return err
	}
	defer lm.Close()

	start := time.Now()
	root, err := lm.ResolveRules(commandContext(cmd), rules)
	if err != nil {
		return fmt.Errorf("resolving rules: %w", err)
	}
	summary := tree.Summarize(root)
	logger.Info("scan complete",
		"file", target,
		"lines", lm.LineCount(),
		"nodes", summary.Nodes,
		"pruned", summary.Pruned,
		"failed", summary.Failed,
		"elapsed", time.Since(start),
	)
	root.Walk(func(n *tree.Node, _ int) bool {
		if n.Stat.Err != nil {
			logger.Warn("rule failed", "rule", n.ID, "error", n.Stat.Err)
		}
		return true
	})

	if scanMetricsPath != "" {
		if err := prometheus.WriteToTextfile(scanMetricsPath, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	switch scanOutputFormat {
	case "json":
		return outputHitsJSON(cmd, root.Hits(lm.Index()))
	case "sarif":
		return outputSARIF(cmd, root, lm)
	case "human":
		return outputHuman(cmd, root, lm)
	default:
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}
}

func scanMatcherConfig() matcher.Config {
	cfg := matcher.DefaultConfig()
	cfg.Engine = matcher.Engine(scanEngine)
	cfg.CaseInsensitive = scanIgnoreCase
	cfg.CaseSmart = scanSmartCase
	cfg.MultiLine = scanMultiLine
	cfg.DotMatchesNewLine = scanDotAll
	cfg.MatchTimeout = scanTimeout
	return cfg
}

// =============================================================================
// HELPERS
// =============================================================================

func outputHitsJSON(cmd *cobra.Command, hits []types.Hit) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(serve.NewHits(hits))
}

// outputSARIF writes hits in SARIF 2.1.0 format.
func outputSARIF(cmd *cobra.Command, root *tree.Node, lm *logmap.LogMap) error {
	report := sarif.NewReport(logmap.Version)
	report.AddTree(root, lm.Index(), lm.Path())

	jsonBytes, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(jsonBytes); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}
	return nil
}

func outputHuman(cmd *cobra.Command, root *tree.Node, lm *logmap.LogMap) error {
	s := newStyles(colorEnabled(scanColor))
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint(root.Label), s.count.Sprintf("%d lines", len(root.Cursors)))
	root.Walk(func(n *tree.Node, depth int) bool {
		if depth == 0 {
			return true
		}
		indent := strings.Repeat("  ", depth)
		switch n.Stat.Status {
		case tree.StatusFailed:
			fmt.Fprintf(out, "%s%s %s\n", indent, s.label.Sprint(n.Label), s.failed.Sprint("failed"))
			return false
		case tree.StatusPruned:
			return false
		}
		if len(n.Cursors) == 0 {
			return false
		}
		fmt.Fprintf(out, "%s%s %s\n", indent, s.label.Sprint(n.Label), s.count.Sprint(len(n.Cursors)))
		return true
	})

	hits := root.Hits(lm.Index())
	if len(hits) == 0 {
		fmt.Fprintf(out, "\nNo hits.\n")
		return nil
	}

	fmt.Fprintf(out, "\n%s\n", s.heading.Sprint("Hits:"))
	for i := range hits {
		if scanMaxHits > 0 && i == scanMaxHits {
			fmt.Fprintf(out, "... %d more\n", len(hits)-scanMaxHits)
			break
		}
		h := &hits[i]
		pos := h.Position()
		fmt.Fprintf(out, "%s  %s  %s\n",
			s.position.Sprintf("%d:%d", pos.Line, pos.Column),
			s.label.Sprint(strings.Join(h.Path, " > ")),
			highlight(s, h.Line, h.Cursor.Offset),
		)
	}
	return nil
}

// highlight colors the line from the cursor offset to the end.
func highlight(s *styles, line []byte, offset int) string {
	if offset < 0 || offset > len(line) {
		return string(line)
	}
	return string(line[:offset]) + s.match.Sprint(string(line[offset:]))
}

// styles holds the color formatters for human output.
type styles struct {
	heading  *color.Color
	label    *color.Color
	count    *color.Color
	position *color.Color
	match    *color.Color
	failed   *color.Color
}

// newStyles creates color formatters, forced on or off regardless of
// color.NoColor.
func newStyles(enabled bool) *styles {
	s := &styles{
		heading:  color.New(color.Bold, color.FgHiWhite),
		label:    color.New(color.Bold, color.FgHiBlue),
		count:    color.New(color.FgHiGreen),
		position: color.New(color.FgHiBlack),
		match:    color.New(color.FgYellow),
		failed:   color.New(color.Bold, color.FgRed),
	}
	for _, c := range []*color.Color{s.heading, s.label, s.count, s.position, s.match, s.failed} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// colorEnabled resolves --color. auto colors only a terminal stdout with
// NO_COLOR unset.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}
