package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the image cache",
	}
	cacheCmd.AddCommand(newCachePrefetchCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	return cacheCmd
}

func newCachePrefetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch",
		Short: "Download every image the collection references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				if !rt.cfg.Images.Enabled {
					return fmt.Errorf("image fetching is disabled (images.enabled = false)")
				}
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				cache, err := rt.imageCache()
				if err != nil {
					return err
				}
				result, err := cache.Prefetch(c, records)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Images: %d requested, %d already cached, %d fetched, %d failed\n",
					result.Requested, result.Cached, result.Fetched, result.Failed)
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove cached images no perfume references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				cache, err := rt.imageCache()
				if err != nil {
					return err
				}
				removed, err := cache.Prune(c, records)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared! %d unused images removed.\n", removed)
				return nil
			})
		},
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show image cache size",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(c context.Context, rt *runtime) error {
				stats, err := rt.store.ImageStats(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				rows := [][]string{
					{"Entries", strconv.Itoa(stats.Entries)},
					{"Size", formatBytes(stats.Bytes)},
					{"Fetching", yesNo(rt.cfg.Images.Enabled)},
					{"Database", rt.store.Path()},
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Property", "Value"}, rows, nil))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}
