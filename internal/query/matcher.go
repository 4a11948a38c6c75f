package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ivoronin/tap/internal/index"
)

// sortMatches sorts by key; equal keys keep their relative order.
func sortMatches(matches []Match) []Match {
	slices.SortStableFunc(matches, compareMatches)
	return matches
}

// filterMatches returns the matches for which keep is true, in order.
func filterMatches(matches []Match, keep func(Match) bool) []Match {
	var result []Match
	for _, m := range matches {
		if keep(m) {
			result = append(result, m)
		}
	}
	return result
}

// versionMatches lists v under every name it provides and under its package name.
func versionMatches(pkg *index.Package, v *index.Version) []Match {
	result := make([]Match, 0, len(v.Provides)+1)
	for _, name := range v.Provides {
		result = append(result, Match{Name: name, Version: v})
	}
	return append(result, Match{Name: pkg.Name, Version: v})
}

// NameMatcher tests the package name and the virtual names of every version.
type NameMatcher struct {
	Predicate Predicate
}

// MatchName creates a NameMatcher.
func MatchName(p Predicate) *NameMatcher {
	return &NameMatcher{Predicate: p}
}

func (m *NameMatcher) Match(pkg *index.Package) []Match {
	var result []Match
	for _, v := range pkg.Versions {
		for _, name := range v.Provides {
			if m.Predicate.Test(name) {
				result = append(result, Match{Name: name, Version: v})
			}
		}
	}
	if m.Predicate.Test(pkg.Name) {
		for _, v := range pkg.Versions {
			result = append(result, Match{Name: pkg.Name, Version: v})
		}
	}
	return sortMatches(result)
}

func (m *NameMatcher) Filter(matches []Match) []Match {
	return filterMatches(matches, func(r Match) bool {
		return m.Predicate.Test(r.Name)
	})
}

func (m *NameMatcher) String() string {
	return fmt.Sprintf("Name(%s)", m.Predicate)
}

// DescMatcher tests the long description of every version.
type DescMatcher struct {
	Predicate Predicate
}

// MatchDesc creates a DescMatcher.
func MatchDesc(p Predicate) *DescMatcher {
	return &DescMatcher{Predicate: p}
}

func (m *DescMatcher) Match(pkg *index.Package) []Match {
	var result []Match
	for _, v := range pkg.Versions {
		if m.Predicate.Test(v.Description) {
			result = append(result, versionMatches(pkg, v)...)
		}
	}
	return sortMatches(result)
}

func (m *DescMatcher) Filter(matches []Match) []Match {
	return filterMatches(matches, func(r Match) bool {
		return m.Predicate.Test(r.Version.Description)
	})
}

func (m *DescMatcher) String() string {
	return fmt.Sprintf("Desc(%s)", m.Predicate)
}

// InstalledMatcher selects the installed version under the package's own name.
type InstalledMatcher struct{}

// MatchInstalled creates an InstalledMatcher.
func MatchInstalled() *InstalledMatcher {
	return &InstalledMatcher{}
}

func (m *InstalledMatcher) Match(pkg *index.Package) []Match {
	if pkg.Installed == nil {
		return nil
	}
	return []Match{{Name: pkg.Name, Version: pkg.Installed}}
}

func (m *InstalledMatcher) Filter(matches []Match) []Match {
	return filterMatches(matches, func(r Match) bool {
		return !r.Virtual() && r.Package().Installed == r.Version
	})
}

func (m *InstalledMatcher) String() string {
	return "Installed()"
}

// NonvirtualMatcher selects every version under the package's own name.
type NonvirtualMatcher struct{}

// MatchNonvirtual creates a NonvirtualMatcher.
func MatchNonvirtual() *NonvirtualMatcher {
	return &NonvirtualMatcher{}
}

func (m *NonvirtualMatcher) Match(pkg *index.Package) []Match {
	result := make([]Match, 0, len(pkg.Versions))
	for _, v := range pkg.Versions {
		result = append(result, Match{Name: pkg.Name, Version: v})
	}
	return sortMatches(result)
}

func (m *NonvirtualMatcher) Filter(matches []Match) []Match {
	return filterMatches(matches, func(r Match) bool {
		return !r.Virtual()
	})
}

func (m *NonvirtualMatcher) String() string {
	return "Nonvirtual()"
}

// ArchMatcher selects versions built for one of Architectures.
type ArchMatcher struct {
	Architectures []string
}

// MatchArch creates an ArchMatcher.
func MatchArch(archs ...string) *ArchMatcher {
	return &ArchMatcher{Architectures: archs}
}

func (m *ArchMatcher) Match(pkg *index.Package) []Match {
	var result []Match
	for _, v := range pkg.Versions {
		if slices.Contains(m.Architectures, v.Architecture) {
			result = append(result, versionMatches(pkg, v)...)
		}
	}
	return sortMatches(result)
}

func (m *ArchMatcher) Filter(matches []Match) []Match {
	return filterMatches(matches, func(r Match) bool {
		return slices.Contains(m.Architectures, r.Version.Architecture)
	})
}

func (m *ArchMatcher) String() string {
	return fmt.Sprintf("Arch(%s)", strings.Join(m.Architectures, ","))
}

// AndMatcher narrows the results of Left with Right.
type AndMatcher struct {
	Left, Right Matcher
}

// And creates an AndMatcher.
func And(left, right Matcher) *AndMatcher {
	return &AndMatcher{Left: left, Right: right}
}

func (m *AndMatcher) Match(pkg *index.Package) []Match {
	results := m.Left.Match(pkg)
	if len(results) == 0 {
		return nil
	}
	return m.Right.Filter(results)
}

func (m *AndMatcher) Filter(matches []Match) []Match {
	results := m.Left.Filter(matches)
	if len(results) == 0 {
		return nil
	}
	return m.Right.Filter(results)
}

func (m *AndMatcher) String() string {
	return fmt.Sprintf("And(%s, %s)", m.Left, m.Right)
}

// OrMatcher merges the results of Left and Right.
type OrMatcher struct {
	Left, Right Matcher
}

// Or creates an OrMatcher.
func Or(left, right Matcher) *OrMatcher {
	return &OrMatcher{Left: left, Right: right}
}

// merge concatenates both sides, sorts them by key and keeps the first
// match of every run of equal keys.
func merge(left, right []Match) []Match {
	merged := slices.Grow([]Match(nil), len(left)+len(right))
	merged = append(merged, left...)
	merged = append(merged, right...)
	merged = sortMatches(merged)
	return slices.CompactFunc(merged, func(a, b Match) bool {
		return compareMatches(a, b) == 0
	})
}

func (m *OrMatcher) Match(pkg *index.Package) []Match {
	return merge(m.Left.Match(pkg), m.Right.Match(pkg))
}

func (m *OrMatcher) Filter(matches []Match) []Match {
	return merge(m.Left.Filter(matches), m.Right.Filter(matches))
}

func (m *OrMatcher) String() string {
	return fmt.Sprintf("Or(%s, %s)", m.Left, m.Right)
}

// nothing never matches.
type nothing struct{}

// Nothing returns a matcher with no results, used for empty patterns.
func Nothing() Matcher {
	return nothing{}
}

func (nothing) Match(*index.Package) []Match { return nil }
func (nothing) Filter([]Match) []Match       { return nil }
func (nothing) String() string               { return "Nothing()" }
