package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"scentlog/internal/config"
	"scentlog/internal/export"
	"scentlog/internal/fileutil"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var csvOnly bool

	cmd := &cobra.Command{
		Use:   "export <archive.zip>",
		Short: "Export the collection CSV and cached images as a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				target, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}

				var source export.ImageSource
				if !csvOnly {
					cache, err := rt.imageCache()
					if err != nil {
						return err
					}
					source = cache
				}

				var manifest export.Manifest
				err = fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
					var werr error
					manifest, werr = export.Write(c, w, records, source, rt.logger)
					if werr != nil {
						return werr
					}
					return c.Err()
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, manifest)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d perfumes and %d images to %s\n",
					manifest.Records, manifest.ImagesWritten, target)
				if manifest.ImagesMissing > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%d images unavailable (run `scentlog cache prefetch` first)\n", manifest.ImagesMissing)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&csvOnly, "csv-only", false, "Skip images")
	return cmd
}
