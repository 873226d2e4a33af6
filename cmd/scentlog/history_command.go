package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scentlog/internal/collection"
	"scentlog/internal/history"
	"scentlog/internal/merge"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past revisions of the collection CSV",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryImportCommand(ctx))
	historyCmd.AddCommand(newHistoryTimelineCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List revisions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			c := commandCtx(cmd)
			provider := history.NewProvider(cfg, ctx.ensureLogger(cfg))
			revisions, err := provider.Revisions(c)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if revisions == nil {
					revisions = []history.Revision{}
				}
				return writeJSON(cmd, revisions)
			}
			if len(revisions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No revisions found")
				return nil
			}
			for i := len(revisions) - 1; i >= 0; i-- {
				fmt.Fprintln(cmd.OutOrStdout(), revisions[i].Label())
			}
			return nil
		},
	}
}

func newHistoryImportCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <revision>",
		Short: "Import the CSV as of a revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				provider := history.NewProvider(rt.cfg, rt.logger)
				revisions, err := provider.Revisions(c)
				if err != nil {
					return err
				}
				rev, err := history.Resolve(revisions, args[0])
				if err != nil {
					return err
				}
				text, err := provider.Content(c, rev.ID)
				if err != nil {
					return err
				}
				mode := merge.ModeMerge
				if overwrite {
					mode = merge.ModeOverwrite
				}
				result, err := rt.session.ImportReader(c, strings.NewReader(text), mode, collection.ImportOptions{
					Source: "revision " + rev.ShortID(),
				})
				if err != nil {
					if errors.Is(err, collection.ErrNothingToImport) {
						return fmt.Errorf("revision %s contains no perfumes", rev.ShortID())
					}
					return err
				}
				return printImportResult(cmd, ctx, result)
			})
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the collection instead of merging")
	return cmd
}

func newHistoryTimelineCommand(ctx *commandContext) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show how ratings changed across revisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			c := commandCtx(cmd)
			logger := ctx.ensureLogger(cfg)
			report, err := history.Build(c, history.NewProvider(cfg, logger), cfg.ViewLanguage(), logger)
			if err != nil {
				return err
			}
			report.Timelines = history.Find(report.Timelines, search)
			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}

			rows := make([][]string, 0, len(report.Timelines))
			for _, t := range report.Timelines {
				points := make([]string, 0, len(t.Ratings))
				for _, p := range t.Ratings {
					points = append(points, strconv.FormatFloat(p.Rating, 'f', -1, 64)+" ("+p.Date.Format("2006-01-02")+")")
				}
				rows = append(rows, []string{t.Brand, t.Name, t.FirstSeenAt.Format("2006-01-02"), strings.Join(points, " → ")})
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, renderTable([]string{"Brand", "Name", "First seen", "Ratings"}, rows, nil))
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%d perfumes across %d revisions\n", len(report.Timelines), len(report.Revisions))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only perfumes whose brand, name or PID contains this text")
	return cmd
}
