package main

import (
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ivoronin/tap/internal/config"
	"github.com/ivoronin/tap/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	verbosity  int
	logJSON    bool
	debFiles   []string

	cfg *config.Config
}

// setup loads the configuration and configures logging. Flags of cmd that
// map to config keys override file and environment values.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, path, err := config.Load(config.LoadOptions{
		File:  a.configFile,
		Flags: cmd.Flags(),
	})
	if err != nil {
		return inputError(err)
	}
	a.cfg = cfg

	level := logging.Verbose(logging.GetLogLevel(cfg.LogLevel), a.verbosity)
	if a.logJSON {
		logging.SetupJSONLogger(level, a.stderr)
	} else {
		logging.SetupDefaultLogger(level, a.stderr)
	}

	if path != "" {
		log.Debug().Str("path", path).Msg("Using config file")
	}
	return nil
}

// normalizeFlags maps flag aliases onto their canonical names.
func normalizeFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "virtual-format" {
		name = "vformat"
	}
	return pflag.NormalizedName(name)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	search := &searchOptions{}

	rootCmd := &cobra.Command{
		Use:   "tap [flags] PATTERN...",
		Short: "Search the APT package index",
		Long: `Search installed and available Debian packages.

A pattern is a sequence of clauses joined with AND; patterns are joined
with OR. Clauses:
  ~nTEXT  name or provided name contains TEXT (the default clause)
  ~dTEXT  description contains TEXT, ignoring case
  ~i      installed version
  ~aARCH  architecture, comma-separated list; ~a alone is the native
          architecture and all, ~aany disables the default restriction
  ~p      real packages only, no provided names
For ~n and ~d, TEXT written as /RE/ is a regular expression.

The first argument version, config or snapshot selects a subcommand.
To search for a package with one of these names, use the search
subcommand: tap search version`,
		Example: `  tap vim
  tap '~i~dpython'
  tap '~n/^python3-.*-dev$/'
  tap search config
  tap -F '%n %v' '~i'`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runSearch(search, args)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/tap/config.toml)")
	pf.CountVarP(&a.verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	pf.BoolVar(&a.logJSON, "log-json", false, "Log JSON lines to stderr")
	pf.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.String("arch", "", "Native architecture (default: detected)")
	pf.String("status-file", "", "dpkg status file")
	pf.String("lists", "", "Glob matching APT Packages lists")
	pf.String("translations", "", "Glob matching APT Translation files with long descriptions")
	pf.String("extended-states", "", "APT extended_states file")
	pf.String("snapshot", "", "Read the index from a YAML snapshot instead of the system")
	pf.StringArrayVar(&a.debFiles, "deb", nil, "Add a local .deb file as an available version (repeatable)")

	addSearchFlags(rootCmd, search)

	rootCmd.AddCommand(newSearchCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newSnapshotCmd(a))
	return rootCmd
}

// execute runs the command line and returns the exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return reportError(stderr, err)
	}
	return ExitSuccess
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
