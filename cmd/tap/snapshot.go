package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ivoronin/tap/internal/index"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the package index as a YAML snapshot",
		Long: `Write the loaded package index as YAML. The snapshot can be searched
later, or on another machine, with --snapshot.`,
		Args: cobra.NoArgs,
		Example: `  tap snapshot -o index.yaml
  tap --snapshot index.yaml '~i'`,
		RunE: func(_ *cobra.Command, _ []string) error {
			idx, err := a.loadIndex()
			if err != nil {
				return indexError(err)
			}
			return a.writeSnapshot(idx, outFile)
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) writeSnapshot(idx index.Index, path string) (err error) {
	var w io.Writer = a.stdout
	if path != "" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return errors.Wrap(cerr, "unable to create snapshot")
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if err = index.WriteSnapshot(w, idx); err != nil {
		return err
	}
	log.Info().Str("output", path).Msg("Snapshot written")
	return nil
}
