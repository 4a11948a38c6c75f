package index

import (
	"runtime"
	"slices"
	"sort"

	"github.com/ivoronin/tap/internal/version"
)

// goarchToDebian maps Go architecture names onto dpkg architecture names.
var goarchToDebian = map[string]string{
	"386":      "i386",
	"amd64":    "amd64",
	"arm":      "armhf",
	"arm64":    "arm64",
	"loong64":  "loong64",
	"mips64le": "mips64el",
	"mipsle":   "mipsel",
	"ppc64le":  "ppc64el",
	"riscv64":  "riscv64",
	"s390x":    "s390x",
}

// DefaultArchitecture returns the dpkg name of the architecture tap runs on.
func DefaultArchitecture() string {
	if arch, ok := goarchToDebian[runtime.GOARCH]; ok {
		return arch
	}
	return runtime.GOARCH
}

// Cache is an in-memory Index.
type Cache struct {
	arch     string
	packages map[string]*Package
}

// NewCache creates an empty cache with the given default architecture.
func NewCache(arch string) *Cache {
	return &Cache{
		arch:     arch,
		packages: make(map[string]*Package),
	}
}

// Architecture returns the default architecture.
func (c *Cache) Architecture() string {
	return c.arch
}

// Len returns the number of packages.
func (c *Cache) Len() int {
	return len(c.packages)
}

// Package returns the package with the given name, or nil.
func (c *Cache) Package(name string) *Package {
	return c.packages[name]
}

// Ensure returns the named package, creating it without versions if needed.
func (c *Cache) Ensure(name string) *Package {
	pkg, ok := c.packages[name]
	if !ok {
		pkg = &Package{Name: name}
		c.packages[name] = pkg
	}
	return pkg
}

// Key returns the package name used for a stanza: foreign-architecture
// packages are qualified as name:arch.
func (c *Cache) Key(name, arch string) string {
	if arch == "" || arch == "all" || arch == c.arch {
		return name
	}
	return name + ":" + arch
}

// Add attaches v to the named package. When the package already has a
// version with the same version string and architecture, that one is kept
// and returned instead.
func (c *Cache) Add(name string, v *Version) *Version {
	pkg := c.Ensure(name)
	if existing := pkg.FindVersion(v.Version, v.Architecture); existing != nil {
		return existing
	}
	v.Package = pkg
	pkg.Versions = append(pkg.Versions, v)
	return v
}

// ForEach calls handler for every package in name order.
func (c *Cache) ForEach(handler func(*Package) error) error {
	names := make([]string, 0, len(c.packages))
	for name := range c.packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := handler(c.packages[name]); err != nil {
			return err
		}
	}
	return nil
}

// selectCandidates orders versions newest first and picks the newest one as
// candidate for packages that have none yet.
func (c *Cache) selectCandidates() {
	for _, pkg := range c.packages {
		slices.SortStableFunc(pkg.Versions, func(a, b *Version) int {
			return version.Compare(b.Version, a.Version)
		})
		if pkg.Candidate == nil && len(pkg.Versions) > 0 {
			pkg.Candidate = pkg.Versions[0]
			if pkg.Installed != nil && version.Compare(pkg.Installed.Version, pkg.Candidate.Version) == 0 {
				pkg.Candidate = pkg.Installed
			}
		}
	}
}
