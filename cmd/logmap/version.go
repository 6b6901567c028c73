package main

import (
	"fmt"
	"runtime"

	"github.com/praetorian-inc/logmap"
	"github.com/praetorian-inc/logmap/pkg/matcher"
	"github.com/spf13/cobra"
)

var commit = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version of logmap and the pattern engines compiled in",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "logmap v%s\n", logmap.Version)
	fmt.Fprintf(out, "Commit: %s\n", commit)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "Engines: %v\n", matcher.Engines())
	return nil
}
