package store

import (
	"context"
	"testing"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
)

func TestLoadVersions_Empty(t *testing.T) {
	s := createTestStore(t)

	records, err := s.LoadVersions(context.Background())
	if err != nil {
		t.Fatalf("LoadVersions() failed: %v", err)
	}
	if records == nil {
		t.Error("LoadVersions() returned nil, want empty slice")
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestLoadVersions_OrderedByVersionThenID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.ImportVersions(ctx, []lineage.VersionRecord{
		createTestVersion("c", "b", "", 1, 0),
		createTestVersion("b", "a", "", 0, 2),
		createTestVersion("a", "", "root", 0, 1),
		createTestVersion("x", "", "", 0, 2),
	}); err != nil {
		t.Fatalf("ImportVersions() failed: %v", err)
	}

	records, err := s.LoadVersions(ctx)
	if err != nil {
		t.Fatalf("LoadVersions() failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("len = %d, want 4", len(records))
	}

	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if cur.Order.Less(prev.Order) {
			t.Errorf("record %d (%s) sorts before record %d (%s)", i, cur.Order, i-1, prev.Order)
		}
		if cur.Order == prev.Order && cur.ID.String() < prev.ID.String() {
			t.Errorf("records %d and %d not ordered by id", i-1, i)
		}
	}

	first := records[0]
	if first.ID != tid("a") {
		t.Fatalf("first = %s, want a", first.ID)
	}
	if first.PreviousVersionID.Valid {
		t.Error("first.PreviousVersionID should be NULL")
	}
	if !first.UnificRootID.Valid || first.UnificRootID.UUID != tid("root") {
		t.Errorf("first.UnificRootID = %v, want root", first.UnificRootID)
	}
}

func TestLoadOrganizations_NewestVersionFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.ImportVersions(ctx, []lineage.VersionRecord{
		createTestVersion("v1", "", "", 0, 1),
		createTestVersion("v2", "v1", "", 1, 0),
	}); err != nil {
		t.Fatalf("ImportVersions() failed: %v", err)
	}
	if err := s.ImportOrganizations(ctx, []hierarchy.OrganizationVersion{
		createTestOrganization("old", "Org", "Parent", "v1"),
		createTestOrganization("new", "Org", "Org", "v2"),
		createTestOrganization("p", "Parent", "", ""),
	}); err != nil {
		t.Fatalf("ImportOrganizations() failed: %v", err)
	}

	orgs, err := s.LoadOrganizations(ctx)
	if err != nil {
		t.Fatalf("LoadOrganizations() failed: %v", err)
	}
	if len(orgs) != 3 {
		t.Fatalf("len = %d, want 3", len(orgs))
	}

	var seen []string
	for _, o := range orgs {
		if o.UnificRootID == tid("Org") {
			seen = append(seen, o.ID.String())
		}
	}
	if len(seen) != 2 || seen[0] != tid("new").String() {
		t.Errorf("Org versions = %v, want newest first", seen)
	}
}

func TestUnificRootOf_Missing(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.UnificRootOf(context.Background(), tid("nope"))
	if err != nil {
		t.Fatalf("UnificRootOf() failed: %v", err)
	}
	if ok {
		t.Error("expected missing record")
	}
}
