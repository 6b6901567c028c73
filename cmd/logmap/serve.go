package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/praetorian-inc/logmap"
	"github.com/praetorian-inc/logmap/pkg/serve"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Answer queries about a log file over stdin/stdout",
	Long: `Run logmap as a long-lived server over one log file. The file is mapped
and indexed once; requests arrive on stdin and responses leave on stdout,
one JSON object per line.

Request types: info, lines, find, resolve, close. The server exits when
stdin closes, a close request arrives or SIGTERM is received.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveRulesPath, "rules", "", "Path to custom rules file or directory")
	rootCmd.AddCommand(serveCmd)
}

var serveRulesPath string

func runServe(cmd *cobra.Command, args []string) error {
	rules, err := loadRules(serveRulesPath, "", "")
	if err != nil {
		return err
	}

	lm, err := logmap.Open(args[0], logmap.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}
	defer lm.Close()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := serve.NewServer(lm, rules, cmd.InOrStdin(), cmd.OutOrStdout())
	return srv.Run(ctx)
}
