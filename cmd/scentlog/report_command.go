package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"scentlog/internal/config"
	"scentlog/internal/fileutil"
	"scentlog/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var title string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize ratings, prices and segments as markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				stats := report.Compute(records)
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}

				if outPath == "" {
					if err := report.WriteMarkdown(cmd.OutOrStdout(), title, stats); err != nil {
						return fmt.Errorf("write report: %w", err)
					}
					return nil
				}

				target, err := config.ExpandPath(outPath)
				if err != nil {
					return err
				}
				err = fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
					return report.WriteMarkdown(w, title, stats)
				})
				if err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote report to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the report to a file")
	cmd.Flags().StringVar(&title, "title", "Perfume Collection", "Report heading")
	return cmd
}
