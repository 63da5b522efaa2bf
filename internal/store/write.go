package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
)

// SaveUnificRoots writes computed roots for records that have none.
//
// All assignments are written in one transaction. The UPDATE only matches
// rows whose unific_root_id is still NULL, so a root set by someone else
// between load and save is never overwritten. Returns the number of rows
// actually updated.
func (s *Store) SaveUnificRoots(ctx context.Context, assignments []lineage.Assignment) (int64, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save unific roots: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE versioning
		SET unific_root_id = ?
		WHERE id = ? AND unific_root_id IS NULL
	`)
	if err != nil {
		return 0, fmt.Errorf("save unific roots: prepare: %w", err)
	}
	defer stmt.Close()

	var updated int64
	for _, a := range assignments {
		res, err := stmt.ExecContext(ctx, a.UnificRootID.String(), a.VersionID.String())
		if err != nil {
			return 0, fmt.Errorf("save unific roots: update %s: %w", a.VersionID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("save unific roots: rows affected: %w", err)
		}
		updated += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save unific roots: commit: %w", err)
	}
	return updated, nil
}

// ImportVersions inserts version records.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - reimporting a fixture is a no-op.
func (s *Store) ImportVersions(ctx context.Context, records []lineage.VersionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import versions: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO versioning
		(id, previous_version_id, unific_root_id, version_major, version_minor)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("import versions: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.ID.String(),
			nullString(r.PreviousVersionID),
			nullString(r.UnificRootID),
			r.Order.Major,
			r.Order.Minor,
		)
		if err != nil {
			return fmt.Errorf("import versions: insert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import versions: commit: %w", err)
	}
	return nil
}

// ImportOrganizations inserts organization versions. The optional versioning
// reference orders versions within a lineage; it must exist when set.
func (s *Store) ImportOrganizations(ctx context.Context, orgs []hierarchy.OrganizationVersion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import organizations: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO organization_versioned
		(id, unific_root_id, parent_id, versioning_id, name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("import organizations: prepare: %w", err)
	}
	defer stmt.Close()

	for _, o := range orgs {
		_, err := stmt.ExecContext(ctx,
			o.ID.String(),
			o.UnificRootID.String(),
			nullString(o.ParentID),
			nullString(o.VersioningID),
			o.Name,
		)
		if err != nil {
			return fmt.Errorf("import organizations: insert %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import organizations: commit: %w", err)
	}
	return nil
}

// nullString converts an optional id to a nullable TEXT value.
func nullString(id uuid.NullUUID) any {
	if !id.Valid {
		return nil
	}
	return id.UUID.String()
}
