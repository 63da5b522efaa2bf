package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
)

// LoadOrganizations returns organization versions grouped by lineage with
// the newest version of each lineage first. The name is the alphabetically
// first of the version's names.
func (db *DB) LoadOrganizations(ctx context.Context) ([]hierarchy.OrganizationVersion, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT o."Id", o."UnificRootId", o."ParentId", o."VersioningId",
			COALESCE((
				SELECT MIN(n."Name") FROM "OrganizationName" n
				WHERE n."OrganizationVersionedId" = o."Id"
			), '')
		FROM "OrganizationVersioned" o
		LEFT JOIN "Versioning" v ON v."Id" = o."VersioningId"
		ORDER BY
			o."UnificRootId",
			COALESCE(v."VersionMajor", 0) DESC,
			COALESCE(v."VersionMinor", 0) DESC,
			o."Id"
	`)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	defer rows.Close()

	orgs := []hierarchy.OrganizationVersion{}
	for rows.Next() {
		var o hierarchy.OrganizationVersion
		if err := rows.Scan(&o.ID, &o.UnificRootID, &o.ParentID, &o.VersioningID, &o.Name); err != nil {
			return nil, fmt.Errorf("load organizations: scan: %w", err)
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load organizations: rows: %w", err)
	}
	return orgs, nil
}

// ImportOrganizations inserts organization versions and their names,
// skipping rows that already exist.
func (db *DB) ImportOrganizations(ctx context.Context, orgs []hierarchy.OrganizationVersion) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("import organizations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	batch := &pgx.Batch{}
	for _, o := range orgs {
		batch.Queue(`
			INSERT INTO "OrganizationVersioned" ("Id", "UnificRootId", "ParentId", "VersioningId")
			VALUES ($1, $2, $3, $4)
			ON CONFLICT ("Id") DO NOTHING
		`, o.ID, o.UnificRootID, o.ParentID, o.VersioningID)
		if o.Name != "" {
			batch.Queue(`
				INSERT INTO "OrganizationName" ("OrganizationVersionedId", "Name")
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, o.ID, o.Name)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("import organizations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("import organizations: commit: %w", err)
	}
	return nil
}
