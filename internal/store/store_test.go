package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
)

func TestOpen_NewSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}

	for _, table := range []string{"versioning", "organization_versioned"} {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("table %s has %d rows, want 0", table, n)
		}
	}
}

func TestOpen_KeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	v := createTestVersion("v1", "", "", 1, 0)
	if err := s.ImportVersions(ctx, []lineage.VersionRecord{v}); err != nil {
		t.Fatalf("ImportVersions() failed: %v", err)
	}
	s.Close()

	// Reopening reapplies schema and pragmas without touching rows.
	for i := 0; i < 2; i++ {
		s, err = Open(path)
		if err != nil {
			t.Fatalf("reopen %d failed: %v", i, err)
		}
		n, err := s.CountUnresolved(ctx)
		if err != nil {
			t.Fatalf("CountUnresolved() failed: %v", err)
		}
		if n != 1 {
			t.Errorf("reopen %d: %d unresolved rows, want 1", i, n)
		}
		s.Close()
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	if _, err := Open("/nonexistent/dir/snapshot.db"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for _, p := range pragmas {
		t.Run(p.name, func(t *testing.T) {
			if err := s.checkPragma(p.name, p.want); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestCheckPragma_Mismatch(t *testing.T) {
	s := createTestStore(t)

	if err := s.checkPragma("foreign_keys", "0"); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestMigrate_LatestVersion(t *testing.T) {
	s := createTestStore(t)

	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion() failed: %v", err)
	}
	if want := migrations[len(migrations)-1].version; v != want {
		t.Errorf("SchemaVersion() = %d, want %d", v, want)
	}

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_versioning_unresolved'",
	).Scan(&name)
	if err != nil {
		t.Errorf("unresolved index not found: %v", err)
	}
}

func TestMigrate_FromVersionZero(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Simulate a snapshot created before the index existed.
	if _, err := s.db.Exec("DROP INDEX idx_versioning_unresolved"); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("reset user_version: %v", err)
	}

	if err := s.migrate(ctx); err != nil {
		t.Fatalf("migrate() failed: %v", err)
	}

	v, err := s.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() failed: %v", err)
	}
	if v != 1 {
		t.Errorf("SchemaVersion() = %d, want 1", v)
	}
}

func TestClose(t *testing.T) {
	if err := (&Store{}).Close(); err != nil {
		t.Errorf("Close() on zero Store: %v", err)
	}

	s, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	_ = s.Close()
}

func TestDBAndPing(t *testing.T) {
	s := createTestStore(t)

	if s.DB() == nil {
		t.Fatal("DB() returned nil")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}
