package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quangdo/skm/internal/config"
	"github.com/quangdo/skm/internal/skills"
)

var updateGlobal bool

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Update skills",
	Long: `Update one or all installed skills.

Skills are only refetched when the upstream commit moved; an unchanged
skill is reported as already up to date.

Examples:
  skm update        # update everything declared in skills.toml
  skm update pdf    # update one skill`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVarP(&updateGlobal, "global", "g", false, "Update the home-rooted store")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	scope := config.ScopeProject
	if updateGlobal {
		scope = config.ScopeGlobal
	}
	mgr, err := skills.NewManager(scope)
	if err != nil {
		return err
	}
	ctx := context.Background()

	var results []skills.UpdateResult
	if len(args) > 0 {
		results = []skills.UpdateResult{mgr.Update(ctx, args[0])}
	} else {
		results = mgr.UpdateAll(ctx)
	}

	updated, failed := 0, 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Printf("  %s: %v\n", res.Name, res.Err)
		case res.Updated:
			updated++
			fmt.Printf("  %s: updated %s -> %s\n", res.Name, short(res.OldCommit), short(res.NewCommit))
		default:
			fmt.Printf("  %s: already up to date\n", res.Name)
		}
	}

	fmt.Printf("\nUpdated %d/%d skills\n", updated, len(results))
	if failed > 0 {
		return fmt.Errorf("%d updates failed", failed)
	}
	return nil
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	if commit == "" {
		return "(none)"
	}
	return commit
}
