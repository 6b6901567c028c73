package main

import (
	"context"
	"log/slog"

	"github.com/praetorian-inc/logmap/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	quiet     bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "logmap",
	Short: "logmap - hierarchical log classification over memory-mapped files",
	Long: `logmap memory-maps a log file, indexes its lines and classifies them with
a hierarchy of regular expressions. Each child rule only runs on lines its
parent matched, starting where the parent's match began.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text, json")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(linesCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.LevelFromFlags(verbose, quiet),
		Format: logging.ParseFormat(logFormat),
		Writer: cmd.ErrOrStderr(),
	})
}

// commandContext returns the command's context, which is unset when a
// RunE function is called directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
