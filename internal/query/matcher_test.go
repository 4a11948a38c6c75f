package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivoronin/tap/internal/index"
	"github.com/ivoronin/tap/internal/testutil"
)

// keys renders matches as "name|package@version" for comparison.
func keys(matches []Match) []string {
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, fmt.Sprintf("%s|%s@%s", m.Name, m.Package().Name, m.Version.Version))
	}
	return result
}

// allMatches lists every (name, version) pair a package can be shown as.
func allMatches(pkg *index.Package) []Match {
	var result []Match
	for _, v := range pkg.Versions {
		result = append(result, versionMatches(pkg, v)...)
	}
	return sortMatches(result)
}

func atoms() []Matcher {
	return []Matcher{
		MatchName(Contains("foo")),
		MatchName(Contains("baz")),
		MatchName(Contains("")),
		MatchDesc(ContainsFold("foo")),
		MatchDesc(ContainsFold("data")),
		MatchInstalled(),
		MatchNonvirtual(),
		MatchArch("amd64", "all"),
		MatchArch("armhf"),
		Nothing(),
	}
}

func TestNameMatcher(t *testing.T) {
	c := testutil.FooBarCache()

	m := MatchName(Contains("foo"))
	assert.Equal(t, []string{"foo|bar@2.0"}, keys(m.Match(c.Package("bar"))))
	assert.Equal(t, []string{"foo|foo@1.0"}, keys(m.Match(c.Package("foo"))))

	m = MatchName(Contains("baz"))
	assert.Equal(t, []string{
		"baz|baz@0.1",
		"baz|baz@0.2",
		"baz-data|baz@0.1",
		"bazz|baz@0.1",
		"bazz|baz@0.2",
	}, keys(m.Match(c.Package("baz"))))
}

func TestDescMatcher(t *testing.T) {
	c := testutil.FooBarCache()

	m := MatchDesc(ContainsFold("FOO"))
	assert.Equal(t, []string{"bar|bar@2.0", "foo|bar@2.0"}, keys(m.Match(c.Package("bar"))))
	assert.Empty(t, m.Match(c.Package("baz")))

	m = MatchDesc(ContainsFold("arm"))
	assert.Equal(t, []string{"baz|baz@0.2", "bazz|baz@0.2"}, keys(m.Match(c.Package("baz"))))
}

func TestInstalledMatcher(t *testing.T) {
	c := testutil.FooBarCache()
	m := MatchInstalled()

	assert.Equal(t, []string{"foo|foo@1.0"}, keys(m.Match(c.Package("foo"))))
	assert.Empty(t, m.Match(c.Package("bar")))

	// virtual matches of an installed version are not kept
	foo := c.Package("foo")
	filtered := m.Filter([]Match{
		{Name: "foo-virtual", Version: foo.Installed},
		{Name: "foo", Version: foo.Installed},
	})
	assert.Equal(t, []string{"foo|foo@1.0"}, keys(filtered))
}

func TestNonvirtualMatcher(t *testing.T) {
	c := testutil.FooBarCache()
	m := MatchNonvirtual()

	assert.Equal(t, []string{"baz|baz@0.1", "baz|baz@0.2"}, keys(m.Match(c.Package("baz"))))
	assert.Equal(t, []string{"baz|baz@0.1"}, keys(m.Filter([]Match{
		{Name: "bazz", Version: c.Package("baz").Versions[0]},
		{Name: "baz", Version: c.Package("baz").Versions[0]},
	})))
}

func TestArchMatcher(t *testing.T) {
	c := testutil.FooBarCache()
	baz := c.Package("baz")

	tests := []struct {
		name  string
		archs []string
		want  []string
	}{
		{"default", []string{"amd64", "all"}, []string{"baz|baz@0.1", "baz-data|baz@0.1", "bazz|baz@0.1"}},
		{"foreign", []string{"armhf"}, []string{"baz|baz@0.2", "bazz|baz@0.2"}},
		{"none", []string{"i386"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keys(MatchArch(tt.archs...).Match(baz)))
		})
	}
}

func TestAndShortCircuit(t *testing.T) {
	c := testutil.FooBarCache()
	right := &countingMatcher{}

	m := And(MatchInstalled(), right)
	assert.Empty(t, m.Match(c.Package("bar")))
	assert.Zero(t, right.filtered)

	assert.Equal(t, []string{"foo|foo@1.0"}, keys(m.Match(c.Package("foo"))))
	assert.Equal(t, 1, right.filtered)
}

func TestOrDeduplicates(t *testing.T) {
	c := testutil.FooBarCache()

	m := Or(MatchName(Contains("ba")), MatchName(Contains("bar")))
	assert.Equal(t, []string{"bar|bar@2.0"}, keys(m.Match(c.Package("bar"))))

	m = Or(MatchInstalled(), MatchNonvirtual())
	assert.Equal(t, []string{"foo|foo@1.0"}, keys(m.Match(c.Package("foo"))))
}

func TestOrKeepsFirstOfEqualKeys(t *testing.T) {
	v1 := &index.Version{Version: "1.0", Architecture: "amd64"}
	v2 := &index.Version{Version: "1.0", Architecture: "i386"}
	pkg := &index.Package{Name: "foo", Versions: []*index.Version{v1, v2}}
	v1.Package, v2.Package = pkg, pkg

	merged := merge([]Match{{Name: "foo", Version: v1}}, []Match{{Name: "foo", Version: v2}})
	require.Len(t, merged, 1)
	assert.Same(t, v1, merged[0].Version)
}

func TestFilterAgreesWithMatch(t *testing.T) {
	c := testutil.FooBarCache()

	for _, m := range atoms() {
		for _, name := range []string{"foo", "bar", "baz"} {
			pkg := c.Package(name)
			t.Run(m.String()+"/"+name, func(t *testing.T) {
				assert.Equal(t, keys(m.Match(pkg)), keys(m.Filter(allMatches(pkg))))
			})
		}
	}
}

func TestAndIsSubsequenceOfLeft(t *testing.T) {
	c := testutil.FooBarCache()

	for _, a := range atoms() {
		for _, b := range atoms() {
			m := And(a, b)
			err := c.ForEach(func(pkg *index.Package) error {
				assertSubsequence(t, keys(a.Match(pkg)), keys(m.Match(pkg)), m.String())
				return nil
			})
			require.NoError(t, err)
		}
	}
}

func TestMatcherString(t *testing.T) {
	m := Or(And(MatchName(Contains("foo")), MatchArch("amd64", "all")), MatchInstalled())
	assert.Equal(t, `Or(And(Name(contains "foo"), Arch(amd64,all)), Installed())`, m.String())
	assert.Equal(t, `Desc(contains-fold "x")`, MatchDesc(ContainsFold("X")).String())
	assert.Equal(t, "Nonvirtual()", MatchNonvirtual().String())
}

func assertSubsequence(t *testing.T, seq, sub []string, msg string) {
	t.Helper()
	i := 0
	for _, s := range seq {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	assert.Equal(t, len(sub), i, "%s: %v is not a subsequence of %v", msg, sub, seq)
}

type countingMatcher struct {
	filtered int
}

func (m *countingMatcher) Match(pkg *index.Package) []Match {
	return allMatches(pkg)
}

func (m *countingMatcher) Filter(matches []Match) []Match {
	m.filtered++
	return matches
}

func (m *countingMatcher) String() string { return "Counting()" }
