package index

import (
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Options selects the sources of a system index.
type Options struct {
	// Architecture is the default architecture; empty means DefaultArchitecture().
	Architecture string
	// StatusFile is the dpkg status database.
	StatusFile string
	// ListsGlob matches APT Packages lists, compressed or not.
	ListsGlob string
	// TranslationsGlob matches APT Translation files carrying long descriptions.
	TranslationsGlob string
	// ExtendedStates holds APT's Auto-Installed markers.
	ExtendedStates string
	// DebFiles are local package archives added as available versions.
	DebFiles []string
}

// Load builds an index from the dpkg status file, APT lists, local .deb
// files, translations and extended states, then derives candidates and flags.
func Load(opts Options) (*Cache, error) {
	arch := opts.Architecture
	if arch == "" {
		arch = DefaultArchitecture()
	}
	c := NewCache(arch)

	if opts.StatusFile != "" {
		if err := c.loadStatus(opts.StatusFile); err != nil {
			return nil, err
		}
	}

	if opts.ListsGlob != "" {
		lists, err := doublestar.FilepathGlob(opts.ListsGlob)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid lists pattern %q", opts.ListsGlob)
		}
		if len(lists) == 0 {
			log.Warn().Str("pattern", opts.ListsGlob).Msg("No package lists found")
		}
		for _, path := range lists {
			if err := c.loadList(path); err != nil {
				return nil, err
			}
		}
	}

	for _, path := range opts.DebFiles {
		if err := c.loadDeb(path); err != nil {
			return nil, err
		}
	}

	if opts.TranslationsGlob != "" {
		files, err := doublestar.FilepathGlob(opts.TranslationsGlob)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid translations pattern %q", opts.TranslationsGlob)
		}
		if err := c.loadTranslations(files); err != nil {
			return nil, err
		}
	}

	if opts.ExtendedStates != "" {
		if err := c.loadExtendedStates(opts.ExtendedStates); err != nil {
			return nil, err
		}
	}

	c.selectCandidates()
	c.analyze()

	log.Debug().Int("packages", c.Len()).Str("architecture", arch).Msg("Index loaded")
	return c, nil
}

// validStanza reports whether s names a binary package version.
func validStanza(path string, s Stanza) bool {
	if s["Package"] == "" || s["Version"] == "" {
		log.Warn().Str("source", path).Str("package", s["Package"]).Msg("Skipping stanza without Package or Version")
		return false
	}
	return true
}

// parseStatus splits a dpkg "Status: want eflag status" field.
func parseStatus(field string) (SelectedState, bool, CurrentState, error) {
	parts := strings.Fields(field)
	if len(parts) != 3 {
		return SelectUnknown, false, StateNotInstalled, errors.Errorf("malformed status %q", field)
	}
	want, err := ParseSelectedState(parts[0])
	if err != nil {
		return SelectUnknown, false, StateNotInstalled, err
	}
	state, err := ParseCurrentState(parts[2])
	if err != nil {
		return want, false, StateNotInstalled, err
	}
	return want, parts[1] == "reinstreq", state, nil
}

func (c *Cache) loadStatus(path string) error {
	count, err := readStanzas(path, func(s Stanza) error {
		if !validStanza(path, s) {
			return nil
		}
		want, reinst, state, err := parseStatus(s["Status"])
		if err != nil {
			log.Warn().Err(err).Str("package", s["Package"]).Msg("Skipping status stanza")
			return nil
		}

		name := c.Key(s["Package"], s["Architecture"])
		pkg := c.Ensure(name)
		pkg.SelectedState = want
		pkg.CurrentState = state
		pkg.reinstRequired = reinst

		if state.HasFiles() {
			pkg.Installed = c.Add(name, versionFromStanza(s))
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "unable to load dpkg status")
	}
	log.Debug().Str("source", path).Int("stanzas", count).Msg("Read dpkg status")
	return nil
}

func (c *Cache) loadList(path string) error {
	count, err := readStanzas(path, func(s Stanza) error {
		if validStanza(path, s) {
			c.Add(c.Key(s["Package"], s["Architecture"]), versionFromStanza(s))
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debug().Str("source", path).Int("stanzas", count).Msg("Read package list")
	return nil
}

func (c *Cache) loadDeb(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "unable to open package archive")
	}
	defer func() { _ = f.Close() }()

	s, err := readDebControl(f)
	if err != nil {
		return errors.Wrapf(err, "unable to read control of %s", path)
	}
	if s == nil || !validStanza(path, s) {
		return errors.Errorf("%s: no package control data", path)
	}
	c.Add(c.Key(s["Package"], s["Architecture"]), versionFromStanza(s))
	log.Debug().Str("source", path).Str("package", s["Package"]).Msg("Read package archive")
	return nil
}

// translationKey identifies a long description: APT drops it from Packages
// lists and keeps only the summary and the MD5 of the full text.
type translationKey struct {
	pkg string
	md5 string
}

// loadTranslations fills summary-only descriptions from Translation files.
// The first file providing a description wins.
func (c *Cache) loadTranslations(paths []string) error {
	wanted := make(map[translationKey][]*Version)
	for _, pkg := range c.packages {
		base, _, _ := strings.Cut(pkg.Name, ":")
		for _, v := range pkg.Versions {
			if v.descriptionMD5 != "" && !strings.Contains(v.Description, "\n") {
				key := translationKey{pkg: base, md5: v.descriptionMD5}
				wanted[key] = append(wanted[key], v)
			}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	for _, path := range paths {
		count, err := readStanzas(path, func(s Stanza) error {
			key := translationKey{pkg: s["Package"], md5: s[descriptionMD5Field]}
			versions, ok := wanted[key]
			if !ok {
				return nil
			}
			text := translatedDescription(s)
			if text == "" {
				return nil
			}
			for _, v := range versions {
				v.Description = description(text)
			}
			delete(wanted, key)
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "unable to load translations")
		}
		log.Debug().Str("source", path).Int("stanzas", count).Msg("Read translations")
	}
	return nil
}

func (c *Cache) loadExtendedStates(path string) error {
	_, err := readStanzas(path, func(s Stanza) error {
		if s["Auto-Installed"] != "1" {
			return nil
		}
		if pkg := c.Package(c.Key(s["Package"], s["Architecture"])); pkg != nil {
			pkg.AutoInstalled = true
		}
		return nil
	})
	if os.IsNotExist(errors.Cause(err)) {
		log.Debug().Str("source", path).Msg("No extended states")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "unable to load extended states")
	}
	return nil
}
