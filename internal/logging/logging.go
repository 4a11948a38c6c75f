// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = zerolog.WarnLevel

// SetupJSONLogger logs JSON lines to w.
func SetupJSONLogger(level zerolog.Level, w io.Writer) {
	zerolog.MessageFieldName = "message"
	zerolog.LevelFieldName = "level"

	var tsHook timestampHook
	log.Logger = zerolog.New(w).
		Hook(&tsHook).
		Level(level)
}

// SetupDefaultLogger logs human-readable lines to w.
func SetupDefaultLogger(level zerolog.Level, w io.Writer) {
	zerolog.MessageFieldName = "message"
	zerolog.LevelFieldName = "level"

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// GetLogLevel parses levelStr, falling back to DefaultLevel with a warning.
func GetLogLevel(levelStr string) zerolog.Level {
	levelStr = strings.ToLower(levelStr)
	if levelStr == "warning" {
		levelStr = "warn"
	}

	var level zerolog.Level

	err := level.UnmarshalText([]byte(levelStr))
	if err == nil && levelStr != "" {
		return level
	}

	log.Warn().Msgf("Unknown log level '%s', defaulting to %s", levelStr, DefaultLevel)
	return DefaultLevel
}

// Verbose lowers level by one step per -v, stopping at trace.
func Verbose(level zerolog.Level, verbosity int) zerolog.Level {
	for ; verbosity > 0 && level > zerolog.TraceLevel; verbosity-- {
		level--
	}
	return level
}

type timestampHook struct{}

func (h *timestampHook) Run(e *zerolog.Event, l zerolog.Level, msg string) {
	e.Str("time", time.Now().Format(time.RFC3339))
}
