package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curdbook/curdbook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "curdbook",
		Short:   "Ledger and cashflow tooling for a mobile cheese stand",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newSyncCommand())
	rootCmd.AddCommand(newProjectCommand())

	return rootCmd
}
