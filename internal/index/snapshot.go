package index

import (
	"io"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

// SnapshotSchema is the schema version written by WriteSnapshot.
const SnapshotSchema = "1.0"

// supportedSchemas is the range of snapshot schemas ReadSnapshot understands.
var supportedSchemas = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

type snapshotFile struct {
	Schema       string            `yaml:"schema"`
	Architecture string            `yaml:"architecture"`
	Packages     []snapshotPackage `yaml:"packages"`
}

type snapshotPackage struct {
	Name          string            `yaml:"name"`
	Installed     string            `yaml:"installed,omitempty"`
	Candidate     string            `yaml:"candidate,omitempty"`
	AutoInstalled bool              `yaml:"auto_installed,omitempty"`
	AutoRemovable bool              `yaml:"auto_removable,omitempty"`
	Broken        bool              `yaml:"broken,omitempty"`
	State         string            `yaml:"state,omitempty"`
	Selection     string            `yaml:"selection,omitempty"`
	Versions      []snapshotVersion `yaml:"versions"`
}

type snapshotVersion struct {
	Version      string   `yaml:"version"`
	Architecture string   `yaml:"architecture"`
	Provides     []string `yaml:"provides,omitempty"`
	Description  string   `yaml:"description,omitempty"`
}

func checkSchema(schema string) error {
	v, err := semver.NewVersion(schema)
	if err != nil {
		return errors.Wrapf(err, "invalid snapshot schema %q", schema)
	}
	if !supportedSchemas.Check(v) {
		return errors.Errorf("unsupported snapshot schema %s (want %s)", schema, supportedSchemas)
	}
	return nil
}

// ReadSnapshot loads an index from YAML. Flags are taken as recorded;
// missing candidates default to the newest version.
func ReadSnapshot(r io.Reader) (*Cache, error) {
	var file snapshotFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "unable to parse snapshot")
	}
	if err := checkSchema(file.Schema); err != nil {
		return nil, err
	}

	arch := file.Architecture
	if arch == "" {
		arch = DefaultArchitecture()
	}
	c := NewCache(arch)

	for _, sp := range file.Packages {
		if sp.Name == "" {
			return nil, errors.New("snapshot package without name")
		}
		pkg := c.Ensure(sp.Name)
		pkg.AutoInstalled = sp.AutoInstalled
		pkg.AutoRemovable = sp.AutoRemovable
		pkg.NowBroken = sp.Broken

		if sp.State != "" {
			state, err := ParseCurrentState(sp.State)
			if err != nil {
				return nil, errors.Wrapf(err, "package %s", sp.Name)
			}
			pkg.CurrentState = state
		}
		if sp.Selection != "" {
			sel, err := ParseSelectedState(sp.Selection)
			if err != nil {
				return nil, errors.Wrapf(err, "package %s", sp.Name)
			}
			pkg.SelectedState = sel
		}

		for _, sv := range sp.Versions {
			c.Add(sp.Name, &Version{
				Version:      sv.Version,
				Architecture: sv.Architecture,
				Provides:     sv.Provides,
				Description:  sv.Description,
			})
		}

		if sp.Installed != "" {
			if pkg.Installed = pkg.FindVersion(sp.Installed, ""); pkg.Installed == nil {
				return nil, errors.Errorf("package %s: installed version %s not listed", sp.Name, sp.Installed)
			}
			if sp.State == "" {
				pkg.CurrentState = StateInstalled
			}
		}
		if sp.Candidate != "" {
			if pkg.Candidate = pkg.FindVersion(sp.Candidate, ""); pkg.Candidate == nil {
				return nil, errors.Errorf("package %s: candidate version %s not listed", sp.Name, sp.Candidate)
			}
		}
	}

	c.selectCandidates()
	return c, nil
}

// WriteSnapshot serialises idx as YAML.
func WriteSnapshot(w io.Writer, idx Index) error {
	file := snapshotFile{
		Schema:       SnapshotSchema,
		Architecture: idx.Architecture(),
	}

	err := idx.ForEach(func(pkg *Package) error {
		sp := snapshotPackage{
			Name:          pkg.Name,
			AutoInstalled: pkg.AutoInstalled,
			AutoRemovable: pkg.AutoRemovable,
			Broken:        pkg.NowBroken,
			State:         pkg.CurrentState.String(),
			Selection:     pkg.SelectedState.String(),
		}
		if pkg.Installed != nil {
			sp.Installed = pkg.Installed.Version
		}
		if pkg.Candidate != nil {
			sp.Candidate = pkg.Candidate.Version
		}
		for _, v := range pkg.Versions {
			sp.Versions = append(sp.Versions, snapshotVersion{
				Version:      v.Version,
				Architecture: v.Architecture,
				Provides:     v.Provides,
				Description:  v.Description,
			})
		}
		file.Packages = append(file.Packages, sp)
		return nil
	})
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return errors.Wrap(err, "unable to write snapshot")
	}
	return enc.Close()
}
