package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the dry-run query cache",
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePruneCmd())

	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}

			stats, err := app.cache.GetStats()
			if err != nil {
				return err
			}

			pterm.Info.Printfln("Entries: %d", stats.TotalEntries)
			pterm.Info.Printfln("Size:    %d bytes", stats.TotalSize)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached query results",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}

			if err := app.cache.Clear(); err != nil {
				return err
			}

			pterm.Success.Println("Cache cleared")
			return nil
		},
	}
}

func newCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cached query results",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}

			pruned, err := app.cache.Prune(0)
			if err != nil {
				return err
			}

			pterm.Success.Printfln("Pruned %d expired entries", pruned)
			return nil
		},
	}
}
