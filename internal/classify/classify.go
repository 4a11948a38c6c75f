// Package classify derives the one-character status flags shown for a
// search result.
package classify

import (
	"github.com/ivoronin/tap/internal/index"
)

// Flags are the display flags of a version shown under a name.
type Flags struct {
	// State is 'v' for virtual results, 'b' for broken installed packages,
	// 'p' for purged or plain available versions, otherwise the dpkg state.
	State rune
	// Automatic is 'A' for automatically installed packages and 'R' when
	// they are also removable.
	Automatic rune
	// Select is the dpkg selection: install, deinstall, hold or purge.
	Select  rune
	Upgrade rune

	Virtual   bool
	Installed bool
}

var installedStates = map[index.CurrentState]rune{
	index.StateConfigFiles:    'c',
	index.StateHalfConfigured: 'C',
	index.StateHalfInstalled:  'I',
	index.StateUnpacked:       'z',
	index.StateInstalled:      'i',
}

var candidateStates = map[index.CurrentState]rune{
	index.StateConfigFiles:    'c',
	index.StateHalfConfigured: 'C',
	index.StateHalfInstalled:  'I',
	index.StateUnpacked:       'z',
}

var selections = map[index.SelectedState]rune{
	index.SelectInstall:   'i',
	index.SelectDeinstall: 'd',
	index.SelectHold:      'h',
	index.SelectPurge:     'p',
}

func lookup[K comparable](m map[K]rune, k K, fallback rune) rune {
	if r, ok := m[k]; ok {
		return r
	}
	return fallback
}

func automatic(pkg *index.Package) rune {
	switch {
	case pkg.AutoInstalled && pkg.AutoRemovable:
		return 'R'
	case pkg.AutoInstalled:
		return 'A'
	case pkg.AutoRemovable:
		return '?'
	default:
		return ' '
	}
}

// Classify computes the flags of v displayed under name.
func Classify(name string, v *index.Version) Flags {
	pkg := v.Package
	f := Flags{
		State:     'p',
		Automatic: ' ',
		Select:    ' ',
		Upgrade:   ' ',
		Virtual:   name != pkg.Name,
	}

	current := pkg.Installed == v || (pkg.Installed == nil && pkg.Candidate == v)

	switch {
	case f.Virtual:
		f.State = 'v'
	case pkg.Installed == v:
		f.Installed = true
		if pkg.NowBroken {
			f.State = 'b'
		} else {
			f.State = lookup(installedStates, pkg.CurrentState, '?')
		}
	case current:
		f.Installed = true
		f.State = lookup(candidateStates, pkg.CurrentState, 'p')
	}

	if f.Installed {
		f.Automatic = automatic(pkg)
		if pkg.Upgradable() {
			f.Upgrade = 'u'
		}
	}
	if current {
		f.Select = lookup(selections, pkg.SelectedState, '?')
	}
	return f
}
