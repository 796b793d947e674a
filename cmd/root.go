package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "skm",
	Short: "Declarative skill package manager",
	Long: `skm installs versioned skill bundles from git repositories, HTTP
archives or the skills registry into the agent directories of a project,
with reproducible installs, version pinning and update detection.`,
	Version: Version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}
