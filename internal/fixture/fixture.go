// Package fixture loads registry snapshots written as YAML.
//
// Fixtures name records with short symbolic keys ("V1", "OrgX"). A key that
// parses as a UUID is used as is; any other key maps to
// uuid.NewSHA1(Namespace, key), so the same key always yields the same id.
//
// A fixture may carry an expect section describing the roots and findings a
// correct engine produces for it. Conformance tests run every fixture under
// testdata and compare.
package fixture

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vrk-kpa/ptv-releases-sub007/internal/hierarchy"
	"github.com/vrk-kpa/ptv-releases-sub007/internal/lineage"
)

// Namespace derives ids from symbolic fixture keys.
var Namespace = uuid.MustParse("6f1d2c9e-4b8a-5e3f-9a47-2d0c5b8e1f63")

// Fixture is a registry snapshot plus optional expectations.
type Fixture struct {
	// Name identifies the fixture in test output.
	Name string `yaml:"name"`

	// Description explains what the fixture exercises.
	Description string `yaml:"description,omitempty"`

	Versions      []Version      `yaml:"versions"`
	Organizations []Organization `yaml:"organizations"`

	// Expect is checked by conformance tests only.
	Expect *Expectations `yaml:"expect,omitempty"`
}

// Version is one row of the version history.
type Version struct {
	ID       string `yaml:"id"`
	Previous string `yaml:"previous,omitempty"`

	// Root is an already persisted unific root.
	Root  string `yaml:"root,omitempty"`
	Major int    `yaml:"major,omitempty"`
	Minor int    `yaml:"minor,omitempty"`
}

// Organization is one organization version.
type Organization struct {
	ID      string `yaml:"id"`
	Lineage string `yaml:"lineage"`
	Parent  string `yaml:"parent,omitempty"`

	// Version references a Version key that orders this row within its lineage.
	Version string `yaml:"version,omitempty"`

	// Name defaults to the lineage key.
	Name string `yaml:"name,omitempty"`
}

// Expectations describe the correct engine output for a fixture.
type Expectations struct {
	// Roots maps version keys to the lineage key they resolve to.
	Roots map[string]string `yaml:"roots,omitempty"`

	// Anomalies counts resolver anomalies by kind.
	Anomalies map[string]int `yaml:"anomalies,omitempty"`

	// Flagged lists lineage keys on a cycle, in snapshot order.
	Flagged []string `yaml:"flagged,omitempty"`

	// Tainted lists lineage keys leading into a cycle.
	Tainted []string `yaml:"tainted,omitempty"`

	// Cycles maps a flagged lineage key to its reported path.
	Cycles map[string][]string `yaml:"cycles,omitempty"`

	// Exhaustive overrides Flagged and Tainted for the exhaustive strategy
	// when it finds more than the walk.
	Exhaustive *Expectations `yaml:"exhaustive,omitempty"`
}

// Load reads and parses a fixture file.
// Unknown fields are rejected so typos fail loudly.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates fixture YAML.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func validate(f *Fixture) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}

	seen := make(map[string]bool, len(f.Versions))
	for i, v := range f.Versions {
		if v.ID == "" {
			return fmt.Errorf("versions[%d]: id is required", i)
		}
		if seen[v.ID] {
			return fmt.Errorf("versions[%d]: duplicate id %q", i, v.ID)
		}
		seen[v.ID] = true
	}

	orgs := make(map[string]bool, len(f.Organizations))
	for i, o := range f.Organizations {
		if o.ID == "" {
			return fmt.Errorf("organizations[%d]: id is required", i)
		}
		if o.Lineage == "" {
			return fmt.Errorf("organizations[%d]: lineage is required", i)
		}
		if orgs[o.ID] {
			return fmt.Errorf("organizations[%d]: duplicate id %q", i, o.ID)
		}
		orgs[o.ID] = true
		if o.Version != "" && !seen[o.Version] {
			return fmt.Errorf("organizations[%d]: unknown version %q", i, o.Version)
		}
	}
	return nil
}

// ID maps a fixture key to its UUID.
func ID(key string) uuid.UUID {
	if id, err := uuid.Parse(key); err == nil {
		return id
	}
	return uuid.NewSHA1(Namespace, []byte(key))
}

func optionalID(key string) uuid.NullUUID {
	if key == "" {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: ID(key), Valid: true}
}

// VersionRecords converts the version rows in file order.
func (f *Fixture) VersionRecords() []lineage.VersionRecord {
	records := make([]lineage.VersionRecord, 0, len(f.Versions))
	for _, v := range f.Versions {
		records = append(records, lineage.VersionRecord{
			ID:                ID(v.ID),
			PreviousVersionID: optionalID(v.Previous),
			UnificRootID:      optionalID(v.Root),
			Order:             lineage.VersionOrder{Major: v.Major, Minor: v.Minor},
		})
	}
	return records
}

// OrganizationVersions converts the organization rows in file order.
func (f *Fixture) OrganizationVersions() []hierarchy.OrganizationVersion {
	orgs := make([]hierarchy.OrganizationVersion, 0, len(f.Organizations))
	for _, o := range f.Organizations {
		name := o.Name
		if name == "" {
			name = o.Lineage
		}
		orgs = append(orgs, hierarchy.OrganizationVersion{
			ID:           ID(o.ID),
			UnificRootID: ID(o.Lineage),
			ParentID:     optionalID(o.Parent),
			VersioningID: optionalID(o.Version),
			Name:         name,
		})
	}
	return orgs
}

// Keys maps every id derived from the fixture back to its key.
func (f *Fixture) Keys() map[uuid.UUID]string {
	keys := make(map[uuid.UUID]string)
	add := func(k string) {
		if k != "" {
			keys[ID(k)] = k
		}
	}
	for _, v := range f.Versions {
		add(v.ID)
		add(v.Previous)
		add(v.Root)
	}
	for _, o := range f.Organizations {
		add(o.ID)
		add(o.Lineage)
		add(o.Parent)
	}
	return keys
}
