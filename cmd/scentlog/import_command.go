package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scentlog/internal/collection"
	"scentlog/internal/config"
	"scentlog/internal/csvio"
	"scentlog/internal/merge"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool
	var encoding string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV export into the collection",
		Long:  "Import a CSV export. By default rows are merged into the collection by identity; --overwrite replaces it. Use - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				reader, source, closeFn, err := openImportSource(cmd, args[0])
				if err != nil {
					return err
				}
				defer closeFn()

				mode := merge.ModeMerge
				if overwrite {
					mode = merge.ModeOverwrite
				}
				result, err := rt.session.ImportReader(c, reader, mode, collection.ImportOptions{
					Encoding: encoding,
					Source:   source,
				})
				if err != nil {
					if errors.Is(err, collection.ErrNothingToImport) {
						return fmt.Errorf("%s contains no perfumes with a brand or name", source)
					}
					return err
				}
				return printImportResult(cmd, ctx, result)
			})
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the collection instead of merging")
	cmd.Flags().StringVar(&encoding, "encoding", csvio.EncodingUTF8, "Input encoding (utf-8, windows-1252, ...)")
	return cmd
}

func openImportSource(cmd *cobra.Command, arg string) (io.Reader, string, func(), error) {
	arg = strings.TrimSpace(arg)
	if arg == "-" {
		return cmd.InOrStdin(), "stdin", func() {}, nil
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return nil, "", nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open %s: %w", arg, err)
	}
	return file, filepath.Base(path), func() { _ = file.Close() }, nil
}

func printImportResult(cmd *cobra.Command, ctx *commandContext, result collection.ImportResult) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Summary())
	if result.Collapsed > 0 {
		fmt.Fprintf(out, "%d duplicate rows folded into earlier rows of the same file\n", result.Collapsed)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(out, "%d rows skipped without an identity\n", result.Skipped)
	}
	for _, rej := range result.Rejected {
		fmt.Fprintf(out, "Rejected %s\n", rej)
	}
	return nil
}
