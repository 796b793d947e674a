package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quangdo/skm/internal/config"
	"github.com/quangdo/skm/internal/skills"
)

var outdatedGlobal bool

var staleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "Show skills with upstream changes",
	Long: `Probe the remote of every locked skill and report which ones have
moved upstream. Nothing is fetched or reinstalled.`,
	RunE: runOutdated,
}

func init() {
	outdatedCmd.Flags().BoolVarP(&outdatedGlobal, "global", "g", false, "Check the home-rooted store")
	rootCmd.AddCommand(outdatedCmd)
}

func runOutdated(cmd *cobra.Command, args []string) error {
	scope := config.ScopeProject
	if outdatedGlobal {
		scope = config.ScopeGlobal
	}
	mgr, err := skills.NewManager(scope)
	if err != nil {
		return err
	}

	results := mgr.Outdated(context.Background())
	if len(results) == 0 {
		fmt.Println("No skills locked")
		return nil
	}

	stale := 0
	for _, o := range results {
		switch {
		case o.Err != nil:
			fmt.Printf("  %s: %v\n", o.Name, o.Err)
		case o.NeedsUpdate:
			stale++
			fmt.Printf("  %s %s %s -> %s\n", staleStyle.Render(o.Name), o.Ref,
				short(o.LocalCommit), short(o.RemoteCommit))
		default:
			fmt.Printf("  %s %s up to date\n", o.Name, o.Ref)
		}
	}

	fmt.Printf("\n%d of %d skills outdated\n", stale, len(results))
	return nil
}
