package fixture

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
)

// TestConformance runs every fixture under testdata through the resolver and
// both detector strategies and compares against its expect section.
func TestConformance(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		f, err := Load(path)
		require.NoError(t, err)
		require.NotNil(t, f.Expect, "%s has no expect section", path)

		t.Run(f.Name, func(t *testing.T) {
			checkResolution(t, f)
			checkHierarchy(t, f, hierarchy.Options{}, f.Expect)

			exhaustive := f.Expect
			if f.Expect.Exhaustive != nil {
				exhaustive = f.Expect.Exhaustive
			}
			checkHierarchy(t, f, hierarchy.Options{Exhaustive: true}, exhaustive)
		})
	}
}

func checkResolution(t *testing.T, f *Fixture) {
	t.Helper()
	res := lineage.Resolve(f.VersionRecords())

	for version, root := range f.Expect.Roots {
		got, ok := res.RootOf(ID(version))
		require.True(t, ok, "version %s not resolved", version)
		assert.Equal(t, ID(root), got, "root of %s", version)
	}

	kinds := make(map[string]int)
	for _, a := range res.Anomalies {
		kinds[string(a.Kind)]++
	}
	want := f.Expect.Anomalies
	if want == nil {
		want = map[string]int{}
	}
	assert.Equal(t, want, kinds)

	// A second pass over persisted output assigns nothing.
	resolved := f.VersionRecords()
	for i := range resolved {
		resolved[i].UnificRootID = uuid.NullUUID{UUID: res.Roots[resolved[i].ID], Valid: true}
	}
	assert.Empty(t, lineage.Resolve(resolved).Pending)
}

func checkHierarchy(t *testing.T, f *Fixture, opts hierarchy.Options, want *Expectations) {
	t.Helper()
	report := hierarchy.NewDetector(opts).FindCycles(f.OrganizationVersions())
	strategy := report.Strategy

	assert.Equal(t, ids(want.Flagged), report.Flagged(), "%s flagged", strategy)
	assert.Equal(t, ids(want.Tainted), report.Tainted, "%s tainted", strategy)

	for lineageKey, cycle := range want.Cycles {
		finding, ok := report.Finding(ID(lineageKey))
		require.True(t, ok, "%s: %s not flagged", strategy, lineageKey)
		assert.Equal(t, ids(cycle), finding.Cycle, "%s: cycle of %s", strategy, lineageKey)
	}
}

func ids(keys []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		out = append(out, ID(k))
	}
	return out
}
