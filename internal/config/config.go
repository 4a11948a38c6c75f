// Package config loads tap settings from the config file, TAP_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ivoronin/tap/internal/output"
)

const (
	// AppName is the application name.
	AppName = "tap"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes environment overrides, e.g. TAP_ARCHITECTURE.
	EnvPrefix = "TAP"
	// SystemConfigDir is searched after the user config directory.
	SystemConfigDir = "/etc/tap"
)

// Config holds the effective settings.
type Config struct {
	Format         string `mapstructure:"format" toml:"format"`
	VirtualFormat  string `mapstructure:"vformat" toml:"vformat"`
	Architecture   string `mapstructure:"architecture" toml:"architecture"`
	StatusFile     string `mapstructure:"status_file" toml:"status_file"`
	Lists          string `mapstructure:"lists" toml:"lists"`
	Translations   string `mapstructure:"translations" toml:"translations"`
	ExtendedStates string `mapstructure:"extended_states" toml:"extended_states"`
	Snapshot       string `mapstructure:"snapshot" toml:"snapshot"`
	LogLevel       string `mapstructure:"log_level" toml:"log_level"`
	Truncate       bool   `mapstructure:"truncate" toml:"truncate"`
}

// DefaultConfig returns the built-in settings. An empty Architecture is
// resolved from the running system by the index loader.
func DefaultConfig() *Config {
	return &Config{
		Format:         output.DefaultTemplate,
		VirtualFormat:  output.DefaultVirtualTemplate,
		StatusFile:     "/var/lib/dpkg/status",
		Lists:          "/var/lib/apt/lists/*_Packages*",
		Translations:   "/var/lib/apt/lists/*_i18n_Translation-*",
		ExtendedStates: "/var/lib/apt/extended_states",
		LogLevel:       "warn",
		Truncate:       true,
	}
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"format":          "format",
	"vformat":         "vformat",
	"arch":            "architecture",
	"status-file":     "status_file",
	"lists":           "lists",
	"translations":    "translations",
	"extended-states": "extended_states",
	"snapshot":        "snapshot",
	"log-level":       "log_level",
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file; it must exist.
	File string
	// Dirs are searched in order when File is empty. Nil means SearchDirs().
	Dirs []string
	// Flags override file and environment values when set on the command line.
	Flags *pflag.FlagSet
}

// ConfigDir returns the user configuration directory: $XDG_CONFIG_HOME/tap,
// defaulting to ~/.config/tap.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName), nil
}

// SearchDirs returns the directories searched for config.toml.
func SearchDirs() []string {
	var dirs []string
	if dir, err := ConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	return append(dirs, SystemConfigDir)
}

// Load reads the configuration. It returns the settings and the path of the
// config file used, empty when none was found.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("format", defaults.Format)
	v.SetDefault("vformat", defaults.VirtualFormat)
	v.SetDefault("architecture", defaults.Architecture)
	v.SetDefault("status_file", defaults.StatusFile)
	v.SetDefault("lists", defaults.Lists)
	v.SetDefault("translations", defaults.Translations)
	v.SetDefault("extended_states", defaults.ExtendedStates)
	v.SetDefault("snapshot", defaults.Snapshot)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("truncate", defaults.Truncate)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		dirs := opts.Dirs
		if dirs == nil {
			dirs = SearchDirs()
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, v.ConfigFileUsed(), nil
}

// TOML renders the settings as a config file.
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}
