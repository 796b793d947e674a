package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quangdo/skm/internal/config"
	"github.com/quangdo/skm/internal/skills"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the content cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached skill content",
	Long: `Remove every cache entry. The cache is never garbage-collected
automatically; this is the only removal operation. Installed skills are
not touched.`,
	RunE: runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	mgr, err := skills.NewManager(config.ScopeProject)
	if err != nil {
		return err
	}
	if err := mgr.Cache().Clear(); err != nil {
		return err
	}
	fmt.Printf("Cleared cache at %s\n", mgr.Cache().Root())
	return nil
}
