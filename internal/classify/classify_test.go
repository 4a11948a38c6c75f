package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivoronin/tap/internal/index"
)

// fixture returns a package with an old and a new version.
func fixture() (*index.Package, *index.Version, *index.Version) {
	c := index.NewCache("amd64")
	old := c.Add("foo", &index.Version{Version: "1.0", Architecture: "amd64", Provides: []string{"foo-virtual"}})
	cur := c.Add("foo", &index.Version{Version: "2.0", Architecture: "amd64"})
	return c.Package("foo"), old, cur
}

func flagString(f Flags) string {
	return string([]rune{f.State, f.Automatic, f.Select, f.Upgrade})
}

func TestClassifyInstalled(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(pkg *index.Package)
		want   string
		direct bool
	}{
		{"installed", func(p *index.Package) {
			p.CurrentState = index.StateInstalled
			p.SelectedState = index.SelectInstall
		}, "i i ", true},
		{"broken wins over installed", func(p *index.Package) {
			p.CurrentState = index.StateInstalled
			p.SelectedState = index.SelectInstall
			p.NowBroken = true
		}, "b i ", true},
		{"half configured", func(p *index.Package) {
			p.CurrentState = index.StateHalfConfigured
			p.SelectedState = index.SelectInstall
		}, "C i ", true},
		{"half installed", func(p *index.Package) {
			p.CurrentState = index.StateHalfInstalled
			p.SelectedState = index.SelectInstall
		}, "I i ", true},
		{"unpacked", func(p *index.Package) {
			p.CurrentState = index.StateUnpacked
			p.SelectedState = index.SelectHold
		}, "z h ", true},
		{"unmapped state", func(p *index.Package) {
			p.CurrentState = index.StateTriggersPending
			p.SelectedState = index.SelectInstall
		}, "? i ", true},
		{"automatic", func(p *index.Package) {
			p.CurrentState = index.StateInstalled
			p.SelectedState = index.SelectInstall
			p.AutoInstalled = true
		}, "iAi ", true},
		{"removable", func(p *index.Package) {
			p.CurrentState = index.StateInstalled
			p.SelectedState = index.SelectInstall
			p.AutoInstalled = true
			p.AutoRemovable = true
		}, "iRi ", true},
		{"removable but manual", func(p *index.Package) {
			p.CurrentState = index.StateInstalled
			p.SelectedState = index.SelectInstall
			p.AutoRemovable = true
		}, "i?i ", true},
		{"unknown selection", func(p *index.Package) {
			p.CurrentState = index.StateInstalled
		}, "i ? ", true},
		{"deinstall selected", func(p *index.Package) {
			p.CurrentState = index.StateInstalled
			p.SelectedState = index.SelectDeinstall
		}, "i d ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, _, cur := fixture()
			pkg.Installed, pkg.Candidate = cur, cur
			tt.setup(pkg)

			f := Classify("foo", cur)
			assert.Equal(t, tt.want, flagString(f))
			assert.True(t, f.Installed)
			assert.False(t, f.Virtual)
		})
	}
}

func TestClassifyUpgradable(t *testing.T) {
	pkg, old, cur := fixture()
	pkg.Installed, pkg.Candidate = old, cur
	pkg.CurrentState = index.StateInstalled
	pkg.SelectedState = index.SelectInstall

	assert.Equal(t, "i iu", flagString(Classify("foo", old)))
	// the candidate of an installed package is a plain available version
	assert.Equal(t, "p   ", flagString(Classify("foo", cur)))
}

func TestClassifyNotInstalled(t *testing.T) {
	tests := []struct {
		name  string
		state index.CurrentState
		sel   index.SelectedState
		want  string
	}{
		{"available", index.StateNotInstalled, index.SelectUnknown, "p ? "},
		{"config files", index.StateConfigFiles, index.SelectDeinstall, "c d "},
		{"purge selected", index.StateNotInstalled, index.SelectPurge, "p p "},
		{"unpacked candidate", index.StateUnpacked, index.SelectInstall, "z i "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, old, cur := fixture()
			pkg.Candidate = cur
			pkg.CurrentState = tt.state
			pkg.SelectedState = tt.sel
			pkg.AutoInstalled = true

			f := Classify("foo", cur)
			assert.Equal(t, tt.want[0:1], string(f.State))
			assert.Equal(t, 'A', f.Automatic)
			assert.Equal(t, tt.want[2:3], string(f.Select))
			assert.True(t, f.Installed)

			other := Classify("foo", old)
			assert.Equal(t, "p   ", flagString(other))
			assert.False(t, other.Installed)
		})
	}
}

func TestClassifyVirtual(t *testing.T) {
	pkg, old, _ := fixture()
	pkg.Installed, pkg.Candidate = old, old
	pkg.CurrentState = index.StateInstalled
	pkg.SelectedState = index.SelectHold
	pkg.AutoInstalled = true

	f := Classify("foo-virtual", old)
	assert.True(t, f.Virtual)
	assert.False(t, f.Installed)
	assert.Equal(t, 'v', f.State)
	assert.Equal(t, ' ', f.Automatic)
	assert.Equal(t, 'h', f.Select)
	assert.Equal(t, ' ', f.Upgrade)
}
