package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/report"
)

// CheckOptions holds flags for the check-hierarchy command.
type CheckOptions struct {
	*RootOptions
	Exhaustive bool
}

// NewCheckHierarchyCommand creates the check-hierarchy command.
func NewCheckHierarchyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check-hierarchy",
		Short: "Report organizations that are their own ancestors",
		Long: `Walk the organization parent relation over lineages and report every
lineage that can reach itself, with the path that closes the cycle.

The default walk follows every parent recorded on any version of the
lineage it starts from, and only the representative version of lineages
above it. --exhaustive follows every version everywhere.

Nothing is modified.

Exit codes:
  0 - No cycles
  1 - Cycles found
  2 - Command error (config, database)

Example:
  ptvlineage check-hierarchy --db ./ptv.db
  ptvlineage check-hierarchy --db ./ptv.db --exhaustive --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckHierarchy(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Exhaustive, "exhaustive", false, "expand every version of every lineage")

	return cmd
}

func runCheckHierarchy(opts *CheckOptions, cmd *cobra.Command) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	sess, err := openSession(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	r, err := sess.runner(opts.RootOptions).CheckHierarchy(ctx, hierarchy.Options{
		Exhaustive: opts.Exhaustive || sess.cfg.Detector.Exhaustive,
	})
	if err != nil {
		return failRun(sess.formatter, "hierarchy check failed", err)
	}

	view := report.NewHierarchy(r)
	if !view.HasCycles() {
		return sess.formatter.Success(view)
	}
	if err := sess.formatter.Findings(view); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d lineage(s) on a cycle", len(view.Cycles)))
}
