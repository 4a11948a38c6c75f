// Package query compiles search patterns into matchers and evaluates them
// against the package index.
package query

import (
	"strings"

	"github.com/ivoronin/tap/internal/index"
)

// Match is a version displayed under a name: the owning package's name or
// one of the virtual names the version provides.
type Match struct {
	Name    string
	Version *index.Version
}

// Package returns the package owning the matched version.
func (m Match) Package() *index.Package {
	return m.Version.Package
}

// Virtual reports whether the match is displayed under a provided name.
func (m Match) Virtual() bool {
	return m.Name != m.Version.Package.Name
}

// compareMatches orders by (displayed name, package name, version string).
// Equal keys denote the same match.
func compareMatches(a, b Match) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := strings.Compare(a.Version.Package.Name, b.Version.Package.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Version.Version, b.Version.Version)
}

// Matcher selects matches from the index.
//
// Match evaluates one package from scratch and returns its matches sorted by
// key. Filter narrows matches produced elsewhere, keeping their order.
// Filtering every possible match of a package yields exactly Match's result.
type Matcher interface {
	Match(pkg *index.Package) []Match
	Filter(matches []Match) []Match
	String() string
}

// Operator selects the kind of a pattern clause.
type Operator rune

const (
	OpName       Operator = 'n'
	OpDesc       Operator = 'd'
	OpInstalled  Operator = 'i'
	OpArch       Operator = 'a'
	OpNonvirtual Operator = 'p'
)

// takesArgument reports whether the text following the operator belongs to it.
func (op Operator) takesArgument() bool {
	return op == OpName || op == OpDesc || op == OpArch
}

// Options configures query compilation.
type Options struct {
	// Architecture is the default architecture used by bare ~a clauses and
	// by patterns without any ~a clause.
	Architecture string
}

func (o Options) defaultArchitectures() []string {
	return []string{o.Architecture, "all"}
}
