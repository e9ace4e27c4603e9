package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marco/toonboard/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the source snapshot cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached source snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.close()

		c := a.cache
		if c == nil {
			// Clearing works even while caching is switched off.
			c, err = cache.NewSQLiteCache(a.cfg.Cache.Path)
			if err != nil {
				return err
			}
			defer c.Close()
		}
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", a.cfg.Cache.Path)
		return nil
	},
}
