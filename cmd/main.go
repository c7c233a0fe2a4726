// harvester-service
//
// Periodically searches the web for government recruitment notices, follows
// them to the issuing board's page or PDF, extracts a structured job record
// and inserts it (inactive, for review) or merges it into an existing one.
//
// Commands:
//   - serve: read API, metrics and the cron-driven sweep
//   - sweep: run one sweep and print its summary
//   - version: print the build version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[harvester-service] %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "harvester",
		Short:         "Government job notice harvester",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(
		newServeCommand(),
		newSweepCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "harvester-service %s\n", version)
			},
		},
	)
	return root
}
