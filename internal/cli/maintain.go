package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/maintenance"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/report"
)

// MaintainOptions holds flags for the maintain command.
type MaintainOptions struct {
	*RootOptions
	DryRun     bool
	Exhaustive bool
}

// NewMaintainCommand creates the maintain command.
func NewMaintainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MaintainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Resolve lineages, then check the hierarchy",
		Long: `Run the full maintenance pass: resolve and persist unific roots, then
check the organization hierarchy for cycles.

Exit codes:
  0 - Pass finished, no cycles
  1 - Cycles found
  2 - Command error (config, database, storage failure)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaintain(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compute roots without writing them")
	cmd.Flags().BoolVar(&opts.Exhaustive, "exhaustive", false, "expand every version of every lineage")

	return cmd
}

func runMaintain(opts *MaintainOptions, cmd *cobra.Command) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	sess, err := openSession(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	result, err := sess.runner(opts.RootOptions).Maintain(ctx, maintenance.MaintainOptions{
		Resolve: maintenance.ResolveOptions{
			DryRun: opts.DryRun || sess.cfg.Resolver.DryRun,
		},
		Hierarchy: hierarchy.Options{
			Exhaustive: opts.Exhaustive || sess.cfg.Detector.Exhaustive,
		},
	})
	if err != nil {
		return failRun(sess.formatter, "maintenance failed", err)
	}

	view := report.NewMaintain(result)
	if !view.Hierarchy.HasCycles() {
		return sess.formatter.Success(view)
	}
	if err := sess.formatter.Findings(view); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d lineage(s) on a cycle", len(view.Hierarchy.Cycles)))
}
