package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/ivoronin/tap/internal/index"
)

// loadIndex reads the configured snapshot, or the system package index.
func (a *app) loadIndex() (*index.Cache, error) {
	if a.cfg.Snapshot != "" {
		if len(a.debFiles) > 0 {
			log.Warn().Strs("deb", a.debFiles).Msg("Ignoring .deb files when reading a snapshot")
		}
		f, err := os.Open(a.cfg.Snapshot)
		if err != nil {
			return nil, errors.Wrap(err, "unable to open snapshot")
		}
		defer f.Close()

		log.Debug().Str("path", a.cfg.Snapshot).Msg("Reading snapshot")
		return index.ReadSnapshot(f)
	}

	return index.Load(index.Options{
		Architecture:     a.cfg.Architecture,
		StatusFile:       a.cfg.StatusFile,
		ListsGlob:        a.cfg.Lists,
		TranslationsGlob: a.cfg.Translations,
		ExtendedStates:   a.cfg.ExtendedStates,
		DebFiles:         a.debFiles,
	})
}
