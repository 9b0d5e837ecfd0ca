package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirmirror/pkg/output"
	"github.com/sdejongh/dirmirror/pkg/sync"
)

var compareFlags MirrorFlags

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "List differences without mirroring",
		Long: `Compare the host and destination trees at every depth and list every
difference. Nothing is modified. Exits 0 when the trees are identical and 1
when they differ.`,
		RunE: runCompare,
	}

	cmd.Flags().StringVarP(&compareFlags.Host, "host", "H", "", "host directory path (required)")
	cmd.Flags().StringVarP(&compareFlags.Dest, "dest", "D", "", "destination directory path (required)")
	cmd.MarkFlagRequired("host")
	cmd.MarkFlagRequired("dest")

	addReportFlags(cmd, &compareFlags)
	addLoggingFlags(cmd, &compareFlags)

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlagsToConfig(cmd, cfg, &compareFlags); err != nil {
		return err
	}

	hostAbs, destAbs, err := resolvePaths(compareFlags.Host, compareFlags.Dest)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	diffs, err := sess.engine.Differences(ctx, hostAbs, destAbs)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if !cfg.Output.Quiet || cfg.Output.Format == "json" {
		if err := output.WriteDifferences(cmd.OutOrStdout(), diffs, hostAbs, destAbs, cfg.Output.Format); err != nil {
			return err
		}
	}

	if compareFlags.DiffReport != "" {
		if err := output.WriteDifferencesReport(diffs, hostAbs, destAbs, compareFlags.DiffReport, compareFlags.DiffFormat); err != nil {
			return fmt.Errorf("failed to write differences report: %w", err)
		}
	}

	if len(diffs) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

// runRoot implements the root command: --hostdir and --destdir select the
// trees, --syncall mirrors them, otherwise they are only compared
func runRoot(cmd *cobra.Command, args []string) error {
	if rootFlags.HostDir == "" && rootFlags.DestDir == "" && !rootFlags.SyncAll {
		return cmd.Help()
	}

	if rootFlags.SyncAll {
		return runMirror(cmd, rootFlags.HostDir, rootFlags.DestDir, &MirrorFlags{})
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlagsToConfig(cmd, cfg, &MirrorFlags{}); err != nil {
		return err
	}

	hostAbs, destAbs, err := resolvePaths(rootFlags.HostDir, rootFlags.DestDir)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	res := <-sess.runner.Go(ctx, sync.Task{Kind: sync.TaskCompute, HostPath: hostAbs, DestPath: destAbs})
	if res.Err != nil {
		return res.Err
	}
	if res.Differs {
		return &ExitError{Code: 1}
	}
	return nil
}
