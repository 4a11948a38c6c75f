package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDependencies(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  [][]dependency
	}{
		{"empty", "", nil},
		{"single", "libc6", [][]dependency{{{name: "libc6"}}}},
		{
			"versioned",
			"libc6 (>= 2.34)",
			[][]dependency{{{name: "libc6", relation: ">=", version: "2.34"}}},
		},
		{
			"legacy relation",
			"foo (< 2)",
			[][]dependency{{{name: "foo", relation: "<", version: "2"}}},
		},
		{
			"bare version means equal",
			"foo (1.0)",
			[][]dependency{{{name: "foo", relation: "=", version: "1.0"}}},
		},
		{
			"alternatives and groups",
			"a | b:any, c (<< 3) [amd64] <!nocheck>,",
			[][]dependency{
				{{name: "a"}, {name: "b"}},
				{{name: "c", relation: "<<", version: "3"}},
			},
		},
		{"unterminated version skipped", "a (>= 1", nil},
		{
			"bad alternative keeps the rest of the field",
			"a | b (>= ), c",
			[][]dependency{{{name: "a"}}, {{name: "c"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDependencies(tt.field))
		})
	}
}

func TestAnalyze(t *testing.T) {
	c := NewCache("amd64")

	install := func(name, ver string, auto bool, mod func(v *Version)) *Package {
		v := &Version{Version: ver, Architecture: "amd64"}
		if mod != nil {
			mod(v)
		}
		v = c.Add(name, v)
		pkg := v.Package
		pkg.Installed = v
		pkg.CurrentState = StateInstalled
		pkg.AutoInstalled = auto
		return pkg
	}

	app := install("app", "1.0", false, func(v *Version) {
		v.Depends = "libfoo (>= 1.0), mail-transport-agent"
		v.Recommends = "helper"
	})
	libfoo := install("libfoo", "1.2", true, nil)
	install("postfix", "3.0", true, func(v *Version) { v.Provides = []string{"mail-transport-agent"} })
	helper := install("helper", "0.1", true, nil)
	orphan := install("orphan", "0.1", true, nil)
	needy := install("needy", "1.0", false, func(v *Version) { v.PreDepends = "libfoo (>= 2.0)" })
	reinst := install("reinst", "1.0", false, nil)
	reinst.reinstRequired = true

	c.analyze()

	assert.False(t, app.NowBroken)
	assert.True(t, needy.NowBroken, "version constraint not met")
	assert.True(t, reinst.NowBroken, "reinstreq flag")

	assert.False(t, libfoo.AutoRemovable)
	assert.False(t, helper.AutoRemovable, "kept by recommends")
	assert.True(t, orphan.AutoRemovable)
	assert.False(t, c.Package("postfix").AutoRemovable, "kept through provides")
	assert.False(t, app.AutoRemovable, "manual packages are never auto-removable")
}
