// Package commands wires the ledgerfold CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerfold-dev/ledgerfold/internal/buildinfo"
	"github.com/ledgerfold-dev/ledgerfold/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "ledgerfold",
		Short:   "Import, classify, and merge plain-text accounting journals",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "settings file")

	loadConfig := func() (*config.Config, error) {
		return config.LoadOptional(configPath)
	}

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newGenerateFingerprintsCommand())
	rootCmd.AddCommand(newApplyRulesCommand(loadConfig))
	rootCmd.AddCommand(newMergeCommand(loadConfig))

	return rootCmd
}
