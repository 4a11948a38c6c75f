package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ivoronin/tap/internal/index"
	"github.com/ivoronin/tap/internal/output"
	"github.com/ivoronin/tap/internal/query"
)

type searchOptions struct {
	json  bool
	table bool
}

// addSearchFlags registers the search flags on cmd. Format flags are read
// back through the configuration.
func addSearchFlags(cmd *cobra.Command, opts *searchOptions) {
	f := cmd.Flags()
	f.StringP("format", "F", "", "Line template for packages (e.g. '%s %|n %v')")
	f.StringP("vformat", "G", "", "Line template for provided names")
	f.BoolVarP(&opts.json, "json", "j", false, "Output in JSON format")
	f.BoolVarP(&opts.table, "table", "t", false, "Output as a table")
	cmd.MarkFlagsMutuallyExclusive("json", "table")
}

func newSearchCmd(a *app) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [flags] PATTERN...",
		Short: "Search packages (the default command)",
		Args:  cobra.ArbitraryArgs,
		Example: `  tap search '~nlibssl~aany'
  tap search -j '~i~dcompiler'`,
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runSearch(opts, args)
		},
	}
	addSearchFlags(cmd, opts)
	return cmd
}

func (a *app) runSearch(opts *searchOptions, patterns []string) error {
	normal, err := output.CompileTemplate(a.cfg.Format)
	if err != nil {
		return inputError(err)
	}
	virtual, err := output.CompileTemplate(a.cfg.VirtualFormat)
	if err != nil {
		return inputError(err)
	}

	arch := a.cfg.Architecture
	if arch == "" {
		arch = index.DefaultArchitecture()
	}
	q, err := query.Compile(patterns, query.Options{Architecture: arch})
	if err != nil {
		return inputError(err)
	}
	if q == nil {
		return errNoResults
	}

	idx, err := a.loadIndex()
	if err != nil {
		return indexError(err)
	}
	// A snapshot may be recorded on another architecture.
	if a.cfg.Architecture == "" && idx.Architecture() != arch {
		if q, err = query.Compile(patterns, query.Options{Architecture: idx.Architecture()}); err != nil {
			return inputError(err)
		}
	}
	log.Debug().Stringer("query", q).Msg("Compiled query")

	matches, err := query.Search(idx, q)
	if err != nil {
		return indexError(err)
	}
	log.Info().Int("matches", len(matches)).Msg("Search finished")
	if len(matches) == 0 {
		return errNoResults
	}

	list := output.NewResultList(matches, normal, virtual)
	format := output.FormatText
	switch {
	case opts.json:
		format = output.FormatJSON
	case opts.table:
		format = output.FormatTable
	default:
		if a.cfg.Truncate {
			list.MaxWidth = terminalWidth(a.stdout)
		}
	}

	result, err := output.FormatOutput(list, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, result)
	return err
}

// terminalWidth returns the width of the terminal w writes to, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
