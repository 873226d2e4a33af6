package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scentlog/internal/inventory"
	"scentlog/internal/record"
)

func newFieldsCommand(ctx *commandContext) *cobra.Command {
	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "Inspect and repair missing field values",
	}
	fieldsCmd.AddCommand(newFieldsListCommand(ctx))
	fieldsCmd.AddCommand(newFieldsMissingCommand(ctx))
	fieldsCmd.AddCommand(newFieldsEntriesCommand(ctx))
	fieldsCmd.AddCommand(newFieldsSetCommand(ctx))
	fieldsCmd.AddCommand(newFieldsBulkCommand(ctx))
	return fieldsCmd
}

// resolveField maps user input to a field name, accepting names or labels in
// any case. Unknown input passes through.
func resolveField(fields []string, arg string) string {
	arg = strings.TrimSpace(arg)
	for _, f := range fields {
		if f == arg {
			return f
		}
	}
	for _, f := range fields {
		if strings.EqualFold(f, arg) || strings.EqualFold(record.Label(f), arg) {
			return f
		}
	}
	for _, f := range record.KnownFields {
		if strings.EqualFold(f, arg) || strings.EqualFold(record.Label(f), arg) {
			return f
		}
	}
	return arg
}

type fieldSummary struct {
	Field   string `json:"field"`
	Label   string `json:"label"`
	Missing int    `json:"missing"`
}

func newFieldsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List fields and how many perfumes lack each",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				fields := inventory.Fields(records)
				summaries := make([]fieldSummary, 0, len(fields))
				for _, f := range fields {
					missing := len(inventory.NeedingAttention(records, []string{f}))
					summaries = append(summaries, fieldSummary{Field: f, Label: record.Label(f), Missing: missing})
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, summaries)
				}
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, []string{s.Field, s.Label, strconv.Itoa(s.Missing)})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Field", "Label", "Missing"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

type attentionOutput struct {
	Key     string   `json:"key"`
	Brand   string   `json:"brand"`
	Name    string   `json:"name"`
	Missing []string `json:"missing"`
}

func newFieldsMissingCommand(ctx *commandContext) *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List perfumes with missing values",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				fields := inventory.Fields(records)
				selected := ""
				if strings.TrimSpace(field) != "" {
					selected = resolveField(fields, field)
				}
				attention := inventory.NeedingAttention(records, inventory.Scope(fields, selected))

				out := make([]attentionOutput, 0, len(attention))
				for _, a := range attention {
					out = append(out, attentionOutput{Key: a.Key, Brand: a.Record.Brand, Name: a.Record.Name, Missing: a.Missing})
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				w := cmd.OutOrStdout()
				if len(out) == 0 {
					fmt.Fprintln(w, "No missing values")
					return nil
				}
				rows := make([][]string, 0, len(out))
				for _, a := range out {
					labels := make([]string, len(a.Missing))
					for i, m := range a.Missing {
						labels[i] = record.Label(m)
					}
					rows = append(rows, []string{a.Key, a.Brand, a.Name, strings.Join(labels, ", ")})
				}
				fmt.Fprint(w, renderTable([]string{"ID", "Brand", "Name", "Missing"}, rows, nil))
				fmt.Fprintln(w)
				fmt.Fprintf(w, "%d perfumes need attention\n", len(out))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "Only check this field")
	return cmd
}

func newFieldsEntriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "entries <field>",
		Short: "Group perfumes by their value of a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				field := resolveField(inventory.Fields(records), args[0])
				entries := inventory.EntriesFor(rt.cfg.ViewLanguage(), records, field)
				if ctx.jsonOutput() {
					if entries == nil {
						entries = []inventory.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.Key, e.Label, strconv.Itoa(e.Count)})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Key", record.Label(field), "Count"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

func newFieldsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <field> <value>",
		Short: "Set a field on the perfume with the given ID",
		Long:  "Set a field on every perfume whose ID (PID, or Brand|Name) matches. Blank values change nothing.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				key := strings.TrimSpace(args[0])
				matches, err := rt.session.Find(key)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					return fmt.Errorf("no perfume with id %q (see `scentlog fields missing`)", key)
				}
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				edits := inventory.NewEdits()
				edits.Stage(key, resolveField(inventory.Fields(records), args[1]), args[2])
				return saveRepairs(c, cmd, ctx, rt, edits)
			})
		},
	}
}

func newFieldsBulkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <field> <entry-key> <value>",
		Short: "Set a field on every perfume in an entry group",
		Long:  "Set a field on every perfume grouped under entry-key by `scentlog fields entries <field>`. Use __MISSING__ for the empty group.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				field := resolveField(inventory.Fields(records), args[0])
				edits := inventory.NewEdits()
				if n := edits.StageBulk(records, field, args[1], args[2]); n == 0 {
					return fmt.Errorf("nothing staged: entry %q of %s is empty or the value is blank", args[1], record.Label(field))
				}
				return saveRepairs(c, cmd, ctx, rt, edits)
			})
		},
	}
}

func saveRepairs(c context.Context, cmd *cobra.Command, ctx *commandContext, rt *runtime, edits *inventory.Edits) error {
	result, err := rt.session.SaveRepairs(c, edits)
	if err != nil {
		return err
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, result)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	return nil
}
