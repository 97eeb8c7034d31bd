package logging

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects the effective configuration of a run and emits a
// single structured event, so a log file from a hotkey launch shows exactly
// which model, tools and credential source were in play.
type StartupLogger struct {
	name     string
	version  string
	tools    map[string]string
	features map[string]bool
	config   map[string]string
}

// Startup creates a StartupLogger for the named command
// (e.g. "explain-screenshot", "explain-text").
func Startup(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		tools:    make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Version sets the build version baked into the binary.
func (s *StartupLogger) Version(v string) *StartupLogger {
	s.version = v
	return s
}

// Tool registers an external program the run depends on.
func (s *StartupLogger) Tool(role, name string) *StartupLogger {
	s.tools[role] = name
	return s
}

// Feature registers a boolean feature flag (e.g. "logFile", "downscale").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
// Never pass the API key itself; log where it came from instead.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// Event builds the startup event on l without sending it.
func (s *StartupLogger) Event(l *zerolog.Logger) *zerolog.Event {
	process := zerolog.Dict().
		Str("name", s.name).
		Int("pid", os.Getpid()).
		Str("goVersion", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Str("display", os.Getenv("DISPLAY")).
		Str("logLevel", zerolog.GlobalLevel().String())
	if s.version != "" {
		process = process.Str("version", s.version)
	}

	evt := l.Info().Dict("process", process)

	if len(s.tools) > 0 {
		evt = evt.Dict("tools", dictFromMap(s.tools))
	}
	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}
	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}
	return evt
}

// Log emits a single structured INFO event with all collected information.
func (s *StartupLogger) Log() {
	s.Event(&log.Logger).Msg("Run starting")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
