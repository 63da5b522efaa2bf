package pgstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/config"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/logger"
)

// openTestDB connects to the database named by PTV_TEST_POSTGRES_URL and
// empties the registry tables. The database must be disposable.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("PTV_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("PTV_TEST_POSTGRES_URL not set")
	}

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database.Driver = config.DriverPostgres
	cfg.Database.URL = url

	ctx := context.Background()
	db, err := New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))
	_, err = db.pool.Exec(ctx, `TRUNCATE "OrganizationName", "OrganizationVersioned", "Versioning" CASCADE`)
	require.NoError(t, err)
	return db
}

func nid(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

func TestVersions_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, db.ImportVersions(ctx, []lineage.VersionRecord{
		{ID: c, PreviousVersionID: nid(b), Order: lineage.VersionOrder{Major: 1}},
		{ID: a, Order: lineage.VersionOrder{Minor: 1}},
		{ID: b, PreviousVersionID: nid(a), Order: lineage.VersionOrder{Minor: 2}},
	}))

	records, err := db.LoadVersions(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []uuid.UUID{a, b, c}, []uuid.UUID{records[0].ID, records[1].ID, records[2].ID})

	res := lineage.Resolve(records)
	updated, err := db.SaveUnificRoots(ctx, res.Pending)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	n, err := db.CountUnresolved(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Second save is a no-op: every row already has a root.
	updated, err = db.SaveUnificRoots(ctx, res.Pending)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestSaveUnificRoots_RollsBackOnFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	b, c := uuid.New(), uuid.New()
	require.NoError(t, db.ImportVersions(ctx, []lineage.VersionRecord{{ID: b}, {ID: c}}))

	// Fail the update of b, after c has already been updated in the same batch.
	_, err := db.pool.Exec(ctx, `
		CREATE OR REPLACE FUNCTION ptv_test_fail() RETURNS trigger AS $$
		BEGIN RAISE EXCEPTION 'storage failure'; END $$ LANGUAGE plpgsql`)
	require.NoError(t, err)
	_, err = db.pool.Exec(ctx, `DROP TRIGGER IF EXISTS ptv_test_fail ON "Versioning"`)
	require.NoError(t, err)
	_, err = db.pool.Exec(ctx, `
		CREATE TRIGGER ptv_test_fail BEFORE UPDATE ON "Versioning"
		FOR EACH ROW WHEN (NEW."Id" = '`+b.String()+`') EXECUTE FUNCTION ptv_test_fail()`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.pool.Exec(context.Background(), `DROP TRIGGER IF EXISTS ptv_test_fail ON "Versioning"`)
	})

	_, err = db.SaveUnificRoots(ctx, []lineage.Assignment{
		{VersionID: c, UnificRootID: c},
		{VersionID: b, UnificRootID: b},
	})
	require.Error(t, err)

	n, err := db.CountUnresolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "neither b nor c may be written")
}

func TestOrganizations_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	x, y := uuid.New(), uuid.New()
	require.NoError(t, db.ImportOrganizations(ctx, []hierarchy.OrganizationVersion{
		{ID: uuid.New(), UnificRootID: x, ParentID: nid(y), Name: "OrgX"},
		{ID: uuid.New(), UnificRootID: y, ParentID: nid(x), Name: "OrgY"},
	}))

	orgs, err := db.LoadOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 2)

	report := hierarchy.NewDetector(hierarchy.Options{}).FindCycles(orgs)
	assert.Len(t, report.Findings, 2)
	assert.Equal(t, "OrgX", report.Name(x))
}
