package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/logger"
)

// ErrStorage marks failures of the underlying database. A run that fails
// with ErrStorage wrote nothing and can be re-run.
var ErrStorage = errors.New("storage failure")

// VersionRepository is the version feed and the write-back target.
type VersionRepository interface {
	// LoadVersions returns all records ordered by version, then id.
	LoadVersions(ctx context.Context) ([]lineage.VersionRecord, error)

	// SaveUnificRoots writes all assignments in one transaction, skipping
	// rows that already have a root, and returns the number written.
	SaveUnificRoots(ctx context.Context, assignments []lineage.Assignment) (int64, error)
}

// OrganizationRepository is the hierarchy feed.
type OrganizationRepository interface {
	// LoadOrganizations returns versions grouped by lineage, the lineage's
	// representative version first.
	LoadOrganizations(ctx context.Context) ([]hierarchy.OrganizationVersion, error)
}

// Importer loads a dataset into a repository.
type Importer interface {
	ImportVersions(ctx context.Context, records []lineage.VersionRecord) error
	ImportOrganizations(ctx context.Context, orgs []hierarchy.OrganizationVersion) error
}

// Runner executes maintenance operations against a pair of repositories.
type Runner struct {
	versions VersionRepository
	orgs     OrganizationRepository
	log      *logger.Logger
	runIDs   RunIDGenerator
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunIDs sets the run id source. Default: UUIDv7Generator.
func WithRunIDs(gen RunIDGenerator) RunnerOption {
	return func(r *Runner) {
		r.runIDs = gen
	}
}

// NewRunner creates a Runner. Either repository may be nil when the caller
// only uses the operations that do not need it.
func NewRunner(versions VersionRepository, orgs OrganizationRepository, log *logger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		versions: versions,
		orgs:     orgs,
		log:      log,
		runIDs:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveOptions configures ResolveLineages.
type ResolveOptions struct {
	// DryRun computes roots without writing them.
	DryRun bool
}

// ResolveSummary is the outcome of ResolveLineages.
type ResolveSummary struct {
	RunID      string              `json:"run_id"`
	DryRun     bool                `json:"dry_run"`
	Written    int64               `json:"written"`
	Resolution *lineage.Resolution `json:"resolution"`
}

// ResolveLineages loads every version record, computes unific roots for the
// unresolved ones and writes them back in one transaction.
func (r *Runner) ResolveLineages(ctx context.Context, opts ResolveOptions) (*ResolveSummary, error) {
	runID := r.runIDs.Generate()
	log := r.log.WithRun(runID, "resolve")

	records, err := r.versions.LoadVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve lineages: %w: %w", ErrStorage, err)
	}
	log.Info("resolving lineages", "records", len(records), "dry_run", opts.DryRun)

	res := lineage.Resolve(records, lineage.WithProgress(func(done, total int) {
		log.Info("progress", "percent", lineage.Percent(done, total), "done", done, "total", total)
	}))

	for _, a := range res.Anomalies {
		log.Warn("malformed chain", "kind", string(a.Kind), "version_id", a.VersionID, "previous_version_id", a.PreviousVersionID)
	}

	summary := &ResolveSummary{
		RunID:      runID,
		DryRun:     opts.DryRun,
		Resolution: res,
	}

	if opts.DryRun || len(res.Pending) == 0 {
		log.Info("resolution finished",
			"assigned", res.Stats.Assigned,
			"lineages", res.Stats.Lineages,
			"anomalies", len(res.Anomalies),
			"written", 0,
		)
		return summary, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolve lineages: %w", err)
	}

	written, err := r.versions.SaveUnificRoots(ctx, res.Pending)
	if err != nil {
		return nil, fmt.Errorf("resolve lineages: %w: %w", ErrStorage, err)
	}
	summary.Written = written

	if skipped := int64(len(res.Pending)) - written; skipped > 0 {
		log.Warn("rows resolved concurrently were left unchanged", "skipped", skipped)
	}
	log.Info("resolution finished",
		"assigned", res.Stats.Assigned,
		"lineages", res.Stats.Lineages,
		"anomalies", len(res.Anomalies),
		"written", written,
	)
	return summary, nil
}

// CheckHierarchy loads the organization hierarchy and reports cycles.
// Cycles are data, not errors: the error result is reserved for storage.
func (r *Runner) CheckHierarchy(ctx context.Context, opts hierarchy.Options) (*hierarchy.Report, error) {
	runID := r.runIDs.Generate()
	d := hierarchy.NewDetector(opts)
	log := r.log.WithRun(runID, "check-hierarchy").WithFields(map[string]any{"strategy": d.Strategy()})

	versions, err := r.orgs.LoadOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("check hierarchy: %w: %w", ErrStorage, err)
	}
	log.Info("checking hierarchy", "versions", len(versions))

	report := d.FindCycles(versions)

	for _, dp := range report.Dangling {
		log.Warn("parent lineage not found", "lineage", dp.Lineage, "version", dp.Version, "parent", dp.Parent)
	}
	log.Info("hierarchy checked",
		"lineages", report.Lineages,
		"flagged", len(report.Findings),
		"tainted", len(report.Tainted),
		"dangling", len(report.Dangling),
	)
	return report, nil
}

// MaintainOptions configures Maintain.
type MaintainOptions struct {
	Resolve   ResolveOptions
	Hierarchy hierarchy.Options
}

// MaintainResult is the outcome of a full pass.
type MaintainResult struct {
	Resolve   *ResolveSummary   `json:"resolve"`
	Hierarchy *hierarchy.Report `json:"hierarchy"`
}

// Maintain resolves lineages first so the hierarchy check sees current
// unific roots, then checks the hierarchy.
func (r *Runner) Maintain(ctx context.Context, opts MaintainOptions) (*MaintainResult, error) {
	summary, err := r.ResolveLineages(ctx, opts.Resolve)
	if err != nil {
		return nil, err
	}
	report, err := r.CheckHierarchy(ctx, opts.Hierarchy)
	if err != nil {
		return nil, err
	}
	return &MaintainResult{Resolve: summary, Hierarchy: report}, nil
}

// Import writes a dataset through imp. Versions go first so organization
// rows can reference them.
func Import(ctx context.Context, imp Importer, records []lineage.VersionRecord, orgs []hierarchy.OrganizationVersion) error {
	if err := imp.ImportVersions(ctx, records); err != nil {
		return fmt.Errorf("import: %w: %w", ErrStorage, err)
	}
	if err := imp.ImportOrganizations(ctx, orgs); err != nil {
		return fmt.Errorf("import: %w: %w", ErrStorage, err)
	}
	return nil
}
