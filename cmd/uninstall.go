package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quangdo/skm/internal/config"
	"github.com/quangdo/skm/internal/skills"
)

var uninstallGlobal bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>...",
	Short: "Remove installed skills",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallGlobal, "global", "g", false, "Remove from the home-rooted store")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	scope := config.ScopeProject
	if uninstallGlobal {
		scope = config.ScopeGlobal
	}
	mgr, err := skills.NewManager(scope)
	if err != nil {
		return err
	}

	for _, name := range args {
		if _, err := mgr.Uninstall(name); err != nil {
			return err
		}
		fmt.Printf("Uninstalled %s\n", name)
	}
	return nil
}
