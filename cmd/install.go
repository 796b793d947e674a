package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quangdo/skm/internal/config"
	"github.com/quangdo/skm/internal/installer"
	"github.com/quangdo/skm/internal/skills"
)

var (
	installGlobal  bool
	installMode    string
	installTargets []string
	installName    string
	installList    bool
	installSkills  []string
)

var installCmd = &cobra.Command{
	Use:   "install [reference...]",
	Short: "Install skills",
	Long: `Install one or more skills into the configured agent directories.

With no arguments, reinstalls everything declared in skills.toml.

Reference formats:
  owner/repo                         github by default
  owner/repo@v1.2.0                  exact tag
  owner/repo@^1.0.0                  semver range
  owner/repo@latest                  highest version tag
  owner/repo/path/to/skill@v1.0.0    monorepo skill
  gitlab:owner/repo@branch:dev       other registry, branch
  git@github.com:owner/repo.git      SSH clone URL
  https://example.com/skill.tar.gz   HTTP archive
  registry:name                      skills registry

Examples:
  skm install anthropics/skills/document-skills/pdf@latest
  skm install org/monorepo --list
  skm install org/monorepo --skill pdf --skill xlsx`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installGlobal, "global", "g", false, "Install into the home-rooted store")
	installCmd.Flags().StringVar(&installMode, "mode", "", "Install mode: symlink or copy")
	installCmd.Flags().StringSliceVarP(&installTargets, "target", "t", nil, "Agent targets (repeatable)")
	installCmd.Flags().StringVar(&installName, "name", "", "Override the skill name")
	installCmd.Flags().BoolVar(&installList, "list", false, "List skills in the repository without installing")
	installCmd.Flags().StringSliceVar(&installSkills, "skill", nil, "Install only the named skills from a repository (repeatable)")
	rootCmd.AddCommand(installCmd)
}

func installScope() config.Scope {
	if installGlobal {
		return config.ScopeGlobal
	}
	return config.ScopeProject
}

func runInstall(cmd *cobra.Command, args []string) error {
	mgr, err := skills.NewManager(installScope())
	if err != nil {
		return err
	}
	ctx := context.Background()
	opts := skills.InstallOptions{
		Name:    installName,
		Mode:    installer.Mode(installMode),
		Targets: installTargets,
	}

	if installList {
		if len(args) != 1 {
			return fmt.Errorf("--list needs exactly one repository reference")
		}
		discovered, err := mgr.DiscoverSkills(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Skills in %s:\n", args[0])
		for _, d := range discovered {
			fmt.Printf("  %-24s %s\n", d.Name, d.Manifest.Description)
		}
		return nil
	}

	if len(installSkills) > 0 {
		if len(args) != 1 {
			return fmt.Errorf("--skill needs exactly one repository reference")
		}
		reports, err := mgr.InstallFromRepo(ctx, args[0], installSkills, opts)
		for _, report := range reports {
			printReport(report)
		}
		return err
	}

	if len(args) == 0 {
		return runBatch(mgr.InstallDeclared(ctx, opts))
	}
	if len(args) == 1 {
		report, err := mgr.Install(ctx, args[0], opts)
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	}
	return runBatch(mgr.InstallRefs(ctx, args, opts))
}

// runBatch prints a per-reference tally and fails only after every pipeline
// has settled.
func runBatch(results []skills.RefResult) error {
	succeeded, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  %s: %v\n", res.Raw, res.Err)
			continue
		}
		succeeded++
		printReport(res.Report)
	}

	fmt.Printf("\n%d installed, %d failed\n", succeeded, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d installs failed", failed, len(results))
	}
	return nil
}

func printReport(report *skills.InstallReport) {
	version := report.Version
	if version == "" {
		version = report.Ref
	}
	fmt.Printf("Installed %s@%s -> %s\n", report.Name, version, report.Path)
	for name, res := range report.Targets {
		switch {
		case res.Success && res.SymlinkFailed:
			fmt.Printf("  %s: copied (symlink unavailable)\n", name)
		case res.Success:
			fmt.Printf("  %s: %s\n", name, res.Mode)
		default:
			fmt.Printf("  %s: failed: %v\n", name, res.Err)
		}
	}
}
