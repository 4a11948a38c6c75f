package index

import (
	"strings"

	"github.com/ivoronin/tap/internal/version"
)

// dependency is one alternative of a relationship field, e.g. "libc6 (>= 2.34)".
type dependency struct {
	name     string
	relation string
	version  string
}

// parseDependencies splits a relationship field into groups of alternatives:
// "a (>= 1), b | c" -> [[a >= 1] [b c]]. Architecture restrictions and build
// profiles are dropped, unparseable alternatives are skipped.
func parseDependencies(field string) [][]dependency {
	var groups [][]dependency
	for _, group := range strings.Split(field, ",") {
		var alts []dependency
		for _, alt := range strings.Split(group, "|") {
			if d, ok := parseDependency(strings.TrimSpace(alt)); ok {
				alts = append(alts, d)
			}
		}
		if len(alts) > 0 {
			groups = append(groups, alts)
		}
	}
	return groups
}

func parseDependency(dep string) (dependency, bool) {
	var d dependency
	name := dep
	if i := strings.IndexAny(dep, "([<"); i != -1 {
		name = dep[:i]
	}
	d.name, _, _ = strings.Cut(strings.TrimSpace(name), ":")
	if d.name == "" {
		return d, false
	}
	open := strings.Index(dep, "(")
	if open == -1 {
		return d, true
	}
	end := strings.Index(dep[open:], ")")
	if end == -1 {
		return d, false
	}
	rest := strings.TrimSpace(dep[open+1 : open+end])
	n := 0
	for n < len(rest) && n < 2 && strings.ContainsRune("<>=", rune(rest[n])) {
		n++
	}
	d.relation = rest[:n]
	if d.relation == "" {
		d.relation = "="
	}
	d.version = strings.TrimSpace(rest[n:])
	return d, d.version != ""
}

// analyzer derives broken and auto-removable flags from installed versions.
type analyzer struct {
	byBase   map[string][]*Package // base name -> packages, native and foreign
	provided map[string]bool       // virtual names provided by installed versions
}

func newAnalyzer(c *Cache) *analyzer {
	a := &analyzer{
		byBase:   make(map[string][]*Package),
		provided: make(map[string]bool),
	}
	for name, pkg := range c.packages {
		base, _, _ := strings.Cut(name, ":")
		a.byBase[base] = append(a.byBase[base], pkg)
		if pkg.Installed != nil {
			for _, p := range pkg.Installed.Provides {
				a.provided[p] = true
			}
		}
	}
	return a
}

// satisfiers returns installed packages fulfilling d. Virtual names only
// satisfy unversioned dependencies.
func (a *analyzer) satisfiers(d dependency) []*Package {
	var result []*Package
	for _, pkg := range a.byBase[d.name] {
		if pkg.Installed != nil && version.Satisfies(pkg.Installed.Version, d.relation, d.version) {
			result = append(result, pkg)
		}
	}
	return result
}

func (a *analyzer) satisfied(group []dependency) bool {
	for _, d := range group {
		if len(a.satisfiers(d)) > 0 {
			return true
		}
		if d.relation == "" && a.provided[d.name] {
			return true
		}
	}
	return false
}

// analyze marks installed packages broken and auto-installed packages that
// no manually installed package needs as auto-removable.
func (c *Cache) analyze() {
	a := newAnalyzer(c)

	var roots []*Package
	for _, pkg := range c.packages {
		if pkg.Installed == nil {
			continue
		}
		if !pkg.AutoInstalled {
			roots = append(roots, pkg)
		}
		if pkg.reinstRequired {
			pkg.NowBroken = true
			continue
		}
		for _, group := range requirements(pkg.Installed, false) {
			if !a.satisfied(group) {
				pkg.NowBroken = true
				break
			}
		}
	}

	providers := make(map[string][]*Package)
	for _, pkg := range c.packages {
		if pkg.Installed == nil {
			continue
		}
		for _, p := range pkg.Installed.Provides {
			providers[p] = append(providers[p], pkg)
		}
	}

	reachable := make(map[*Package]bool)
	queue := roots
	for _, pkg := range roots {
		reachable[pkg] = true
	}
	for len(queue) > 0 {
		pkg := queue[0]
		queue = queue[1:]
		for _, group := range requirements(pkg.Installed, true) {
			for _, d := range group {
				next := a.satisfiers(d)
				if d.relation == "" {
					next = append(next, providers[d.name]...)
				}
				for _, n := range next {
					if !reachable[n] {
						reachable[n] = true
						queue = append(queue, n)
					}
				}
			}
		}
	}

	for _, pkg := range c.packages {
		pkg.AutoRemovable = pkg.Installed != nil && pkg.AutoInstalled && !reachable[pkg]
	}
}

// requirements returns the dependency groups of v; recommends are included
// when keeping packages alive.
func requirements(v *Version, withRecommends bool) [][]dependency {
	groups := parseDependencies(v.PreDepends)
	groups = append(groups, parseDependencies(v.Depends)...)
	if withRecommends {
		groups = append(groups, parseDependencies(v.Recommends)...)
	}
	return groups
}
