package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirmirror/internal/platform"
	"github.com/sdejongh/dirmirror/pkg/config"
	"github.com/sdejongh/dirmirror/pkg/models"
)

// ExitError carries a process exit code out of a command. Err is nil when
// the command already reported everything it had to say.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// resolvePaths validates the host and destination arguments and returns
// their absolute forms. The host must be an existing directory and the two
// trees must not overlap.
func resolvePaths(host, dest string) (string, string, error) {
	if host == "" {
		return "", "", &models.ValidationError{Field: "host", Message: "host directory is required"}
	}
	if dest == "" {
		return "", "", &models.ValidationError{Field: "dest", Message: "destination directory is required"}
	}

	hostAbs, err := platform.Resolve(host)
	if err != nil {
		return "", "", err
	}
	destAbs, err := platform.Resolve(dest)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(hostAbs)
	if err != nil {
		return "", "", &models.NotFoundError{Path: hostAbs, Role: models.RoleHost, Err: err}
	}
	if !info.IsDir() {
		return "", "", &models.NotFoundError{Path: hostAbs, Role: models.RoleHost, Err: errors.New("not a directory")}
	}

	if err := platform.CheckPair(hostAbs, destAbs); err != nil {
		return "", "", err
	}

	return hostAbs, destAbs, nil
}

// checkDestination verifies the destination can receive the mirror
func checkDestination(destAbs string, createDest bool) error {
	info, err := os.Stat(destAbs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !createDest {
			return fmt.Errorf("%w (use --create-dest to create it)",
				&models.NotFoundError{Path: destAbs, Role: models.RoleDest})
		}
	case err != nil:
		return fmt.Errorf("failed to access destination path: %w", err)
	case !info.IsDir():
		return fmt.Errorf("destination path exists but is not a directory: %s", destAbs)
	}

	if err := platform.CheckWritable(destAbs); err != nil {
		return fmt.Errorf("destination is not writable: %w", err)
	}
	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globalFlags.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyFlagsToConfig overrides config values with command-line flags that
// were explicitly set
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config, flags *MirrorFlags) error {
	changed := cmd.Flags().Changed

	if changed("create-dest") {
		cfg.Mirror.CreateDest = flags.CreateDest
	}
	if changed("output") {
		cfg.Output.Format = flags.Output
	}
	if changed("log-file") {
		cfg.Logging.File = flags.LogFile
		cfg.Logging.Enabled = flags.LogFile != ""
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.LogFormat
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.LogLevel
	}
	if changed("activity-log") {
		cfg.Logging.ActivityFile = flags.ActivityLog
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
	// Actions are listed one per line in verbose mode
	if globalFlags.Verbose {
		cfg.Output.Progress = false
	}

	return cfg.Validate()
}
