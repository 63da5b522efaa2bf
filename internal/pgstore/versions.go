package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
)

// LoadVersions returns every version record ordered by version, then id.
func (db *DB) LoadVersions(ctx context.Context) ([]lineage.VersionRecord, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT "Id", "PreviousVersionId", "UnificRootId", "VersionMajor", "VersionMinor"
		FROM "Versioning"
		ORDER BY "VersionMajor", "VersionMinor", "Id"
	`)
	if err != nil {
		return nil, fmt.Errorf("load versions: %w", err)
	}
	defer rows.Close()

	records := []lineage.VersionRecord{}
	for rows.Next() {
		var r lineage.VersionRecord
		if err := rows.Scan(
			&r.ID,
			&r.PreviousVersionID,
			&r.UnificRootID,
			&r.Order.Major,
			&r.Order.Minor,
		); err != nil {
			return nil, fmt.Errorf("load versions: scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load versions: rows: %w", err)
	}
	return records, nil
}

// SaveUnificRoots writes computed roots in one transaction. Rows that gained
// a root since they were loaded are left alone. Returns the number of rows
// updated.
func (db *DB) SaveUnificRoots(ctx context.Context, assignments []lineage.Assignment) (int64, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("save unific roots: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(`
			UPDATE "Versioning"
			SET "UnificRootId" = $1
			WHERE "Id" = $2 AND "UnificRootId" IS NULL
		`, a.UnificRootID, a.VersionID)
	}

	results := tx.SendBatch(ctx, batch)
	var updated int64
	for _, a := range assignments {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("save unific roots: update %s: %w", a.VersionID, err)
		}
		updated += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("save unific roots: close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("save unific roots: commit: %w", err)
	}
	return updated, nil
}

// CountUnresolved returns how many version records have no unific root yet.
func (db *DB) CountUnresolved(ctx context.Context) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM "Versioning" WHERE "UnificRootId" IS NULL
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unresolved: %w", err)
	}
	return n, nil
}

// ImportVersions inserts version records, skipping ids that already exist.
func (db *DB) ImportVersions(ctx context.Context, records []lineage.VersionRecord) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("import versions: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO "Versioning"
			("Id", "PreviousVersionId", "UnificRootId", "VersionMajor", "VersionMinor")
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT ("Id") DO NOTHING
		`, r.ID, r.PreviousVersionID, r.UnificRootID, r.Order.Major, r.Order.Minor)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("import versions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("import versions: commit: %w", err)
	}
	return nil
}
