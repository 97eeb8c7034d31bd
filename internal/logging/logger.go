package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the global logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty falls back to
	// GEMINI_LOG_LEVEL, then info.
	Level string
	// File, when set, adds a rotated JSON sink next to the console output.
	File string
}

// Init initializes the global logger. Console output always goes to stderr so
// nothing interferes with a terminal the user launched the command from.
func Init(opts Options) {
	level := opts.Level
	if level == "" {
		level = os.Getenv("GEMINI_LOG_LEVEL")
	}
	zerolog.SetGlobalLevel(ParseLevel(level))

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, fileSink(opts.File))
	}
	log.Logger = log.Output(out)
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func fileSink(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}
