package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_SymbolicKeysAreStable(t *testing.T) {
	assert.Equal(t, ID("OrgX"), ID("OrgX"))
	assert.NotEqual(t, ID("OrgX"), ID("OrgY"))
	assert.Equal(t, uuid.Version(5), ID("OrgX").Version())
}

func TestID_UUIDKeysPassThrough(t *testing.T) {
	raw := "0b7a4f1e-2c3d-4e5f-8a9b-0c1d2e3f4a5b"
	assert.Equal(t, uuid.MustParse(raw), ID(raw))
}

func TestParse_Conversion(t *testing.T) {
	f, err := Parse([]byte(`
name: tiny
versions:
  - {id: V1, minor: 1}
  - {id: V2, previous: V1, root: V1, major: 2}
organizations:
  - {id: o1, lineage: Org, parent: Org, version: V2}
  - {id: o2, lineage: Sub, parent: Org, name: Subsidiary}
`))
	require.NoError(t, err)

	records := f.VersionRecords()
	require.Len(t, records, 2)
	assert.Equal(t, ID("V1"), records[0].ID)
	assert.False(t, records[0].PreviousVersionID.Valid)
	assert.Equal(t, ID("V1"), records[1].PreviousVersionID.UUID)
	assert.True(t, records[1].IsResolved())
	assert.Equal(t, 2, records[1].Order.Major)

	orgs := f.OrganizationVersions()
	require.Len(t, orgs, 2)
	assert.True(t, orgs[0].IsTopLevel())
	assert.Equal(t, ID("V2"), orgs[0].VersioningID.UUID)
	assert.Equal(t, "Org", orgs[0].Name)
	assert.Equal(t, "Subsidiary", orgs[1].Name)

	keys := f.Keys()
	assert.Equal(t, "Sub", keys[ID("Sub")])
	assert.Equal(t, "V1", keys[ID("V1")])
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "versions: []"},
		{"unknown field", "name: x\nversion: []"},
		{"version without id", "name: x\nversions: [{minor: 1}]"},
		{"duplicate version", "name: x\nversions: [{id: A}, {id: A}]"},
		{"organization without lineage", "name: x\norganizations: [{id: o}]"},
		{"duplicate organization", "name: x\norganizations: [{id: o, lineage: L}, {id: o, lineage: L}]"},
		{"unknown versioning ref", "name: x\norganizations: [{id: o, lineage: L, version: V9}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: file\n"), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", f.Name)
	assert.Empty(t, f.VersionRecords())
}
