package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/output"
	"github.com/sdejongh/dirmirror/pkg/sync"
)

// MirrorFlags holds sync and compare command flags
type MirrorFlags struct {
	Host        string
	Dest        string
	CreateDest  bool
	Output      string
	DiffReport  string
	DiffFormat  string
	LogFile     string
	LogFormat   string
	LogLevel    string
	ActivityLog string
}

var syncFlags MirrorFlags

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the host directory onto the destination",
		Long: `Compare the host and destination trees and, when they differ, make the
destination an exact copy of the host: new and changed files are copied,
entries absent from the host are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror(cmd, syncFlags.Host, syncFlags.Dest, &syncFlags)
		},
	}

	// Required flags
	cmd.Flags().StringVarP(&syncFlags.Host, "host", "H", "", "host directory path (required)")
	cmd.Flags().StringVarP(&syncFlags.Dest, "dest", "D", "", "destination directory path (required)")
	cmd.MarkFlagRequired("host")
	cmd.MarkFlagRequired("dest")

	// Optional flags
	cmd.Flags().BoolVar(&syncFlags.CreateDest, "create-dest", true, "create destination directory if it doesn't exist")
	addReportFlags(cmd, &syncFlags)
	addLoggingFlags(cmd, &syncFlags)

	return cmd
}

func addReportFlags(cmd *cobra.Command, flags *MirrorFlags) {
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "human", "output format: human, json")
	cmd.Flags().StringVar(&flags.DiffReport, "diff-report", "", "write differences report to file")
	cmd.Flags().StringVar(&flags.DiffFormat, "diff-format", "human", "differences report format: human, json")
}

func addLoggingFlags(cmd *cobra.Command, flags *MirrorFlags) {
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "write diagnostic logs to file (enables logging)")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&flags.ActivityLog, "activity-log", "", "append timestamped activity lines to file")
}

// runMirror validates, compares and mirrors host onto dest when they differ
func runMirror(cmd *cobra.Command, host, dest string, flags *MirrorFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlagsToConfig(cmd, cfg, flags); err != nil {
		return err
	}

	hostAbs, destAbs, err := resolvePaths(host, dest)
	if err != nil {
		return err
	}
	if err := checkDestination(destAbs, cfg.Mirror.CreateDest); err != nil {
		return err
	}

	sess, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	if flags.DiffReport != "" {
		if err := writeDiffReport(ctx, sess, hostAbs, destAbs, flags); err != nil {
			return err
		}
	}

	if sess.formatter != nil {
		sess.formatter.Start(cmd.OutOrStdout(), hostAbs, destAbs)
	}

	res := <-sess.runner.Go(ctx, sync.Task{Kind: sync.TaskRun, HostPath: hostAbs, DestPath: destAbs})
	if res.Err != nil {
		if sess.formatter != nil {
			sess.formatter.Error(res.Err)
			if res.Outcome != nil {
				sess.formatter.Complete(res.Outcome)
			}
		}
		code := models.StatusFailed.ExitCode()
		if res.Outcome != nil {
			code = res.Outcome.Status.ExitCode()
		}
		return &ExitError{Code: code, Err: fmt.Errorf("sync failed: %w", res.Err)}
	}

	if sess.formatter != nil {
		if err := sess.formatter.Complete(res.Outcome); err != nil {
			return err
		}
	}

	if code := res.Outcome.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// writeDiffReport lists every difference before mirroring. A destination
// that does not exist yet has nothing to list.
func writeDiffReport(ctx context.Context, sess *session, hostAbs, destAbs string, flags *MirrorFlags) error {
	diffs, err := sess.engine.Differences(ctx, hostAbs, destAbs)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) && nf.Role == models.RoleDest {
			return nil
		}
		return err
	}

	if err := output.WriteDifferencesReport(diffs, hostAbs, destAbs, flags.DiffReport, flags.DiffFormat); err != nil {
		return fmt.Errorf("failed to write differences report: %w", err)
	}
	return nil
}
