package testutil

import (
	"github.com/ivoronin/tap/internal/index"
)

// AddVersion adds a version to the named package of c and returns it.
func AddVersion(c *index.Cache, pkg, ver, arch, desc string, provides ...string) *index.Version {
	return c.Add(pkg, &index.Version{
		Version:      ver,
		Architecture: arch,
		Description:  desc,
		Provides:     provides,
	})
}

// Install marks v as the installed and candidate version of its package.
func Install(v *index.Version) *index.Package {
	pkg := v.Package
	pkg.Installed = v
	pkg.Candidate = v
	pkg.CurrentState = index.StateInstalled
	pkg.SelectedState = index.SelectInstall
	return pkg
}

// Candidate marks v as the candidate version of its package.
func Candidate(v *index.Version) *index.Package {
	v.Package.Candidate = v
	return v.Package
}

// FooBarCache builds the small index used across package tests: foo 1.0
// installed on amd64, bar 2.0 available and providing foo, baz with an
// arch-independent and a foreign version.
func FooBarCache() *index.Cache {
	c := index.NewCache("amd64")
	Install(AddVersion(c, "foo", "1.0", "amd64", "The Foo utility\nFoo does things."))
	Candidate(AddVersion(c, "bar", "2.0", "amd64", "Bar, a FOO replacement", "foo"))
	AddVersion(c, "baz", "0.1", "all", "Baz data files", "bazz", "baz-data")
	Candidate(AddVersion(c, "baz", "0.2", "armhf", "Baz data files for arm", "bazz"))
	return c
}
