package cli

import (
	"github.com/spf13/cobra"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/maintenance"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/report"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	DryRun bool
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Assign unific roots to version records",
		Long: `Compute the unific root of every version record that has none and
write all of them in a single transaction.

Records that already have a root are never changed. Dangling and cyclic
predecessor chains are reported; the affected record becomes its own root
or the root of its cycle.

Exit codes:
  0 - Resolution finished (malformed chains are reported, not failures)
  2 - Command error (config, database, storage failure)

Example:
  ptvlineage resolve --db ./ptv.db
  ptvlineage resolve --db postgres://ptv@localhost/ptv --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compute roots without writing them")

	return cmd
}

func runResolve(opts *ResolveOptions, cmd *cobra.Command) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	sess, err := openSession(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	summary, err := sess.runner(opts.RootOptions).ResolveLineages(ctx, maintenance.ResolveOptions{
		DryRun: opts.DryRun || sess.cfg.Resolver.DryRun,
	})
	if err != nil {
		return failRun(sess.formatter, "resolve failed", err)
	}

	return sess.formatter.Success(report.NewResolve(summary))
}
