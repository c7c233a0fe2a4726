package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"govjobs/harvester-service/internal/model"
	"govjobs/harvester-service/internal/scheduler"
)

func newSweepCommand() *cobra.Command {
	var memory, asJSON bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one sweep and print its summary",
		Long: `Run one sweep now. With --memory the records go to an in-memory store
that is discarded on exit, which makes the command a dry run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), appOptions{memory: memory})
			if err != nil {
				return err
			}
			defer a.close()

			summary, err := scheduler.New(a.worker, a.rdb, a.cfg.Schedule, a.log).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			if err := printSummary(cmd.OutOrStdout(), summary, asJSON); err != nil {
				return err
			}
			if !summary.Success {
				return fmt.Errorf("sweep failed: %s", summary.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "use an in-memory store (dry run)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full summary, trace included, as JSON")
	return cmd
}

func printSummary(w io.Writer, s model.SweepSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintln(w, s.Message)
	if s.Debug == nil {
		return nil
	}
	c := s.Debug.Counts
	fmt.Fprintf(w, "fetched=%d deduped=%d budgeted=%d admitted=%d extracted=%d fallbacks=%d accepted=%d inserted=%d merged=%d\n",
		c.Fetched, c.AfterDedup, c.Budgeted, c.Admitted, c.Extracted, c.Fallbacks, c.Accepted, c.Inserted, c.Merged)
	for _, sk := range s.Debug.Skipped {
		fmt.Fprintf(w, "  skip [%s] %s: %s\n", sk.Stage, sk.Link, sk.Reason)
	}
	for _, e := range s.Debug.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	return nil
}
