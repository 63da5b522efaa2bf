package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
)

// LoadVersions returns every version record in processing order.
// ORDER BY version_major, version_minor, id COLLATE BINARY for deterministic feeds.
func (s *Store) LoadVersions(ctx context.Context) ([]lineage.VersionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, previous_version_id, unific_root_id, version_major, version_minor
		FROM versioning
		ORDER BY version_major ASC, version_minor ASC, id COLLATE BINARY ASC
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

// LoadOrganizations returns organization versions grouped by lineage.
// Within a lineage the newest version comes first, so it is the one the
// detector treats as representative. Versions without a versioning row sort
// as 0.0.
func (s *Store) LoadOrganizations(ctx context.Context) ([]hierarchy.OrganizationVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.unific_root_id, o.parent_id, o.versioning_id, o.name
		FROM organization_versioned o
		LEFT JOIN versioning v ON v.id = o.versioning_id
		ORDER BY
			o.unific_root_id COLLATE BINARY ASC,
			COALESCE(v.version_major, 0) DESC,
			COALESCE(v.version_minor, 0) DESC,
			o.id COLLATE BINARY ASC
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

// CountUnresolved returns how many version records have no unific root yet.
func (s *Store) CountUnresolved(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM versioning WHERE unific_root_id IS NULL
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unresolved: %w", err)
	}
	return n, nil
}

// UnificRootOf returns the stored root of a version record. The second
// result is false when the record does not exist.
func (s *Store) UnificRootOf(ctx context.Context, id uuid.UUID) (uuid.NullUUID, bool, error) {
	var root uuid.NullUUID
	err := s.db.QueryRowContext(ctx, `
		SELECT unific_root_id FROM versioning WHERE id = ?
	`, id.String()).Scan(&root)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.NullUUID{}, false, nil
	}
	if err != nil {
		return uuid.NullUUID{}, false, fmt.Errorf("unific root of %s: %w", id, err)
	}
	return root, true, nil
}
