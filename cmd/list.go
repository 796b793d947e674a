package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quangdo/skm/internal/config"
	"github.com/quangdo/skm/internal/skills"
)

var listGlobal bool

var (
	nameStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	linkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed skills",
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listGlobal, "global", "g", false, "List the home-rooted store")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	scope := config.ScopeProject
	if listGlobal {
		scope = config.ScopeGlobal
	}
	mgr, err := skills.NewManager(scope)
	if err != nil {
		return err
	}

	installed, err := mgr.List()
	if err != nil {
		return err
	}
	if len(installed) == 0 {
		fmt.Println("No skills installed")
		return nil
	}

	for _, s := range installed {
		version := s.Version
		if version == "" {
			version = "?"
		}
		line := fmt.Sprintf("%s %s", nameStyle.Render(s.Name), version)
		if s.IsLinked {
			line += " " + linkedStyle.Render("(linked)")
		}
		fmt.Println(line)
		if s.Source != "" {
			fmt.Println(dimStyle.Render("  " + s.Source))
		}
	}

	fmt.Printf("\n%d skills\n", len(installed))
	return nil
}
