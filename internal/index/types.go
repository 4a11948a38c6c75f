// Package index provides the read-only APT package index that tap queries.
package index

import (
	"fmt"
	"strings"
)

// CurrentState is the dpkg low-level installation state of a package.
type CurrentState int

const (
	StateNotInstalled CurrentState = iota
	StateConfigFiles
	StateHalfInstalled
	StateUnpacked
	StateHalfConfigured
	StateTriggersAwaited
	StateTriggersPending
	StateInstalled
)

var currentStateNames = []string{
	StateNotInstalled:    "not-installed",
	StateConfigFiles:     "config-files",
	StateHalfInstalled:   "half-installed",
	StateUnpacked:        "unpacked",
	StateHalfConfigured:  "half-configured",
	StateTriggersAwaited: "triggers-awaited",
	StateTriggersPending: "triggers-pending",
	StateInstalled:       "installed",
}

func (s CurrentState) String() string {
	if int(s) < 0 || int(s) >= len(currentStateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return currentStateNames[s]
}

// ParseCurrentState converts a dpkg status word (e.g. "half-configured").
func ParseCurrentState(s string) (CurrentState, error) {
	for i, name := range currentStateNames {
		if name == s {
			return CurrentState(i), nil
		}
	}
	return StateNotInstalled, fmt.Errorf("unknown package state %q", s)
}

// HasFiles reports whether dpkg considers a version of the package present
// on the system, i.e. apt would report it as the installed version.
func (s CurrentState) HasFiles() bool {
	return s != StateNotInstalled && s != StateConfigFiles
}

// SelectedState is the dpkg selection ("want") of a package.
type SelectedState int

const (
	SelectUnknown SelectedState = iota
	SelectInstall
	SelectHold
	SelectDeinstall
	SelectPurge
)

var selectedStateNames = []string{
	SelectUnknown:   "unknown",
	SelectInstall:   "install",
	SelectHold:      "hold",
	SelectDeinstall: "deinstall",
	SelectPurge:     "purge",
}

func (s SelectedState) String() string {
	if int(s) < 0 || int(s) >= len(selectedStateNames) {
		return fmt.Sprintf("selection(%d)", int(s))
	}
	return selectedStateNames[s]
}

// ParseSelectedState converts a dpkg selection word (e.g. "hold").
func ParseSelectedState(s string) (SelectedState, error) {
	for i, name := range selectedStateNames {
		if name == s {
			return SelectedState(i), nil
		}
	}
	return SelectUnknown, fmt.Errorf("unknown selection state %q", s)
}

// Version is one release of a package.
type Version struct {
	Package      *Package
	Version      string
	Architecture string
	Provides     []string
	// Description is the full description: summary line, then the extended text.
	Description string
	// descriptionMD5 links a summary-only Description to its Translation entry.
	descriptionMD5 string

	// Raw relationship fields, used to derive broken and auto-removable flags.
	Depends    string
	PreDepends string
	Recommends string
}

// Summary returns the first line of the description.
func (v *Version) Summary() string {
	summary, _, _ := strings.Cut(v.Description, "\n")
	return summary
}

func (v *Version) String() string {
	return v.Package.Name + "_" + v.Version + "_" + v.Architecture
}

// Package is a named unit of the index with zero or more versions.
type Package struct {
	Name     string
	Versions []*Version

	// Installed and Candidate point into Versions, or are nil.
	Installed *Version
	Candidate *Version

	AutoInstalled bool
	AutoRemovable bool
	NowBroken     bool

	CurrentState  CurrentState
	SelectedState SelectedState

	reinstRequired bool
}

// Upgradable reports whether the candidate version differs from the installed one.
func (p *Package) Upgradable() bool {
	return p.Installed != nil && p.Candidate != nil && p.Candidate != p.Installed
}

// FindVersion returns the version with the given version string and
// architecture, or nil. An empty arch matches any architecture.
func (p *Package) FindVersion(ver, arch string) *Version {
	for _, v := range p.Versions {
		if v.Version == ver && (arch == "" || v.Architecture == arch) {
			return v
		}
	}
	return nil
}

// Index is the read-only view of the package index consumed by queries.
type Index interface {
	// ForEach calls handler for every package in name order, stopping at the first error.
	ForEach(handler func(*Package) error) error
	// Architecture returns the default (native) architecture.
	Architecture() string
}
