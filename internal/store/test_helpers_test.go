package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// tid derives a stable test id from a short name.
func tid(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("store-test/"+name))
}

func optional(name string) uuid.NullUUID {
	if name == "" {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: tid(name), Valid: true}
}

// createTestVersion creates a version record. Empty prev or root means NULL.
func createTestVersion(id, prev, root string, major, minor int) lineage.VersionRecord {
	return lineage.VersionRecord{
		ID:                tid(id),
		PreviousVersionID: optional(prev),
		UnificRootID:      optional(root),
		Order:             lineage.VersionOrder{Major: major, Minor: minor},
	}
}

// createTestOrganization creates an organization version. Empty parent or
// versioning means NULL.
func createTestOrganization(id, lineageName, parent, versioning string) hierarchy.OrganizationVersion {
	return hierarchy.OrganizationVersion{
		ID:           tid(id),
		UnificRootID: tid(lineageName),
		ParentID:     optional(parent),
		VersioningID: optional(versioning),
		Name:         lineageName,
	}
}
