package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the dirmirror command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dirmirror",
		Short: "One-way directory mirroring utility",
		Long: `dirmirror detects whether a destination directory tree differs from a
host tree, comparing file contents byte for byte, and mirrors the host onto
the destination when it does.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	AddGlobalFlags(rootCmd)
	AddRootFlags(rootCmd)

	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
