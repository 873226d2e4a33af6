package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scentlog/internal/store"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the collection change journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, rt *runtime) error {
				entries, err := rt.store.ListJournal(c, limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if entries == nil {
						entries = []store.JournalEntry{}
					}
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No changes recorded")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.CreatedAt.Local().Format("2006-01-02 15:04"),
						e.Kind,
						strconv.Itoa(e.Added),
						strconv.Itoa(e.Updated),
						strconv.Itoa(e.Skipped),
						strconv.Itoa(e.Total),
						e.Detail,
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"When", "Kind", "Added", "Updated", "Skipped", "Total", "Source"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	return cmd
}
