package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"scentlog/internal/config"
	"scentlog/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the application log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, config.AppName+".log")

			chunk, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(chunk.Lines) == 0 && !follow {
				fmt.Fprintf(out, "No log entries in %s\n", path)
				return nil
			}
			for _, line := range chunk.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(commandCtx(cmd), path, chunk.Offset, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	return cmd
}
