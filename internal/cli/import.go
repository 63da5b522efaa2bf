package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/fixture"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/maintenance"
)

// ImportResult summarizes an import.
type ImportResult struct {
	Fixture       string `json:"fixture"`
	Versions      int    `json:"versions"`
	Organizations int    `json:"organizations"`
}

func (r *ImportResult) String() string {
	return fmt.Sprintf("Imported %d version(s) and %d organization version(s) from %s",
		r.Versions, r.Organizations, r.Fixture)
}

// migrator is implemented by backends that can create their own tables.
type migrator interface {
	Migrate(ctx context.Context) error
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <fixture.yaml>",
		Short: "Load a YAML snapshot into the database",
		Long: `Load version records and organization versions from a YAML fixture.

Rows whose id already exists are skipped, so importing the same fixture
twice is a no-op. Fixture keys that are not UUIDs are mapped to stable
name-based UUIDs.

Example:
  ptvlineage import --db ./ptv.db ./snapshot.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	sess, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	f, err := fixture.Load(path)
	if err != nil {
		return fail(sess.formatter, ErrCodeFixture, "failed to load fixture", err)
	}

	if m, ok := sess.repo.(migrator); ok {
		if err := m.Migrate(ctx); err != nil {
			return fail(sess.formatter, ErrCodeStorage, "failed to create tables", err)
		}
	}

	records, orgs := f.VersionRecords(), f.OrganizationVersions()
	if err := maintenance.Import(ctx, sess.repo, records, orgs); err != nil {
		return failRun(sess.formatter, "import failed", err)
	}
	sess.log.Info("fixture imported", "fixture", f.Name, "versions", len(records), "organizations", len(orgs))

	return sess.formatter.Success(&ImportResult{
		Fixture:       f.Name,
		Versions:      len(records),
		Organizations: len(orgs),
	})
}
