package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

// RootFlags holds the flags accepted by the root command itself
type RootFlags struct {
	HostDir string
	DestDir string
	SyncAll bool
}

var (
	globalFlags GlobalFlags
	rootFlags   RootFlags
)

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/dirmirror/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
}

// AddRootFlags adds the host/destination shortcut flags to the root command.
// With --syncall the root command compares and mirrors in one go; without it
// the trees are only compared.
func AddRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rootFlags.HostDir, "hostdir", "", "host directory path")
	cmd.Flags().StringVar(&rootFlags.DestDir, "destdir", "", "destination directory path")
	cmd.Flags().BoolVar(&rootFlags.SyncAll, "syncall", false, "mirror the host directory onto the destination when they differ")
}
