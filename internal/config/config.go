// Package config builds the single explicit configuration for a run.
//
// Values are resolved once at startup, highest priority first: command-line
// flags, the process environment, a .env file, built-in defaults. Nothing
// downstream reads the environment again.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fpang/gemini-explain/internal/assets"
	"github.com/fpang/gemini-explain/internal/chat"
	"github.com/fpang/gemini-explain/internal/tool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Environment variable names.
const (
	EnvAPIKey             = "GEMINI_API_KEY"
	EnvAPIKeyFallback     = "GOOGLE_API_KEY"
	EnvModel              = "GEMINI_MODEL"
	EnvLogLevel           = "GEMINI_LOG_LEVEL"
	EnvLogFile            = "EXPLAIN_LOG_FILE"
	EnvCaptureTool        = "EXPLAIN_CAPTURE_TOOL"
	EnvCaptureDelay       = "EXPLAIN_CAPTURE_DELAY"
	EnvClipboardTool      = "EXPLAIN_CLIPBOARD_TOOL"
	EnvClipboardSelection = "EXPLAIN_CLIPBOARD_SELECTION"
	EnvMaxImageDimension  = "EXPLAIN_MAX_DIMENSION"
	EnvScreenshotPrompt   = "EXPLAIN_SCREENSHOT_PROMPT"
	EnvTextPrompt         = "EXPLAIN_TEXT_PROMPT"
	EnvOutputDir          = "EXPLAIN_OUTPUT_DIR"
	EnvTimeout            = "EXPLAIN_TIMEOUT"
)

// Defaults.
const (
	DefaultCaptureTool        = "maim"
	DefaultCaptureDelay       = time.Second
	DefaultClipboardTool      = "xclip"
	DefaultClipboardSelection = "primary"
)

// Credential sources reported by Config.CredentialSource.
const (
	SourceNone   = "none"
	SourceEnv    = "env"
	SourceDotenv = "dotenv"
	SourceGPG    = "gpg"
)

// Config is the resolved configuration for one invocation.
type Config struct {
	APIKey           string
	CredentialSource string
	EnvFile          string

	Model string

	CaptureTool        string
	CaptureDelay       time.Duration
	ClipboardTool      string
	ClipboardSelection string
	MaxImageDimension  int

	ScreenshotPrompt  string
	DefaultTextPrompt string

	// OutputDir receives capture files and rendered pages. Empty means os.TempDir().
	OutputDir string

	LogLevel string
	LogFile  string
	Timeout  time.Duration
}

// Options carries command-line overrides. Zero values and nil pointers mean
// "not set on the command line".
type Options struct {
	EnvFile            string
	Model              string
	LogLevel           string
	LogFile            string
	ScreenshotPrompt   string
	ClipboardSelection string

	CaptureDelay      *time.Duration
	MaxImageDimension *int
	Timeout           *time.Duration

	// GPG decrypts the credentials file. Nil uses the gpg binary on PATH.
	GPG tool.Runner
}

// Load resolves the configuration. A missing API key is not an error here;
// the inference stage reports it so earlier stages still run and clean up.
func Load(ctx context.Context, opts Options) (*Config, error) {
	envFile, dotenv, err := readDotenv(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	src := sources{dotenv: dotenv}

	cfg := &Config{
		EnvFile:            envFile,
		Model:              first(opts.Model, src.get(EnvModel), chat.DefaultModelName),
		CaptureTool:        first(src.get(EnvCaptureTool), DefaultCaptureTool),
		ClipboardTool:      first(src.get(EnvClipboardTool), DefaultClipboardTool),
		ClipboardSelection: first(opts.ClipboardSelection, src.get(EnvClipboardSelection), DefaultClipboardSelection),
		ScreenshotPrompt:   first(opts.ScreenshotPrompt, src.get(EnvScreenshotPrompt), assets.ScreenshotPrompt()),
		DefaultTextPrompt:  first(src.get(EnvTextPrompt), assets.DefaultTextPrompt()),
		OutputDir:          src.get(EnvOutputDir),
		LogLevel:           first(opts.LogLevel, src.get(EnvLogLevel), "info"),
		LogFile:            first(opts.LogFile, src.get(EnvLogFile)),
	}

	if cfg.CaptureDelay, err = durationSetting(opts.CaptureDelay, src.get(EnvCaptureDelay), DefaultCaptureDelay); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvCaptureDelay, err)
	}
	if cfg.Timeout, err = durationSetting(opts.Timeout, src.get(EnvTimeout), 0); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvTimeout, err)
	}
	if cfg.MaxImageDimension, err = intSetting(opts.MaxImageDimension, src.get(EnvMaxImageDimension)); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvMaxImageDimension, err)
	}
	if cfg.CaptureDelay < 0 || cfg.Timeout < 0 || cfg.MaxImageDimension < 0 {
		return nil, errors.New("capture delay, timeout and max dimension must not be negative")
	}

	if !chat.IsKnownModel(cfg.Model) {
		log.Warn().Str("model", cfg.Model).Msg("Unrecognized Gemini model; sending it as-is")
	}

	cfg.APIKey, cfg.CredentialSource = resolveAPIKey(ctx, src, opts.GPG)
	return cfg, nil
}

// sources looks a key up in the process environment, then in the .env values.
type sources struct {
	dotenv map[string]string
}

func (s sources) get(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(s.dotenv[key])
}

func (s sources) origin(key string) string {
	if strings.TrimSpace(os.Getenv(key)) != "" {
		return SourceEnv
	}
	return SourceDotenv
}

func resolveAPIKey(ctx context.Context, src sources, gpg tool.Runner) (string, string) {
	for _, key := range []string{EnvAPIKey, EnvAPIKeyFallback} {
		if v := src.get(key); v != "" {
			origin := src.origin(key)
			log.Debug().Str("variable", key).Str("source", origin).Msg("Using API key")
			return v, origin
		}
	}

	if gpg == nil {
		gpg = tool.New("gpg")
	}
	key, err := keyFromGPG(ctx, gpg)
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, SourceGPG
	}
	log.Debug().Err(err).Msg("No API key found")
	return "", SourceNone
}

// readDotenv loads the first .env file found. An explicitly named file must exist.
func readDotenv(explicit string) (string, map[string]string, error) {
	if explicit != "" {
		values, err := godotenv.Read(explicit)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read env file %s: %w", explicit, err)
		}
		return explicit, values, nil
	}

	for _, path := range dotenvCandidates() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
		log.Debug().Str("file", path).Int("keys", len(values)).Msg("Loaded .env file")
		return path, values, nil
	}
	return "", nil, nil
}

func dotenvCandidates() []string {
	paths := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "gemini-explain", ".env"))
	}
	return paths
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseDuration accepts Go durations ("1500ms") or plain seconds ("1.5").
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

func durationSetting(flag *time.Duration, env string, def time.Duration) (time.Duration, error) {
	if flag != nil {
		return *flag, nil
	}
	if env == "" {
		return def, nil
	}
	return parseDuration(env)
}

func intSetting(flag *int, env string) (int, error) {
	if flag != nil {
		return *flag, nil
	}
	if env == "" {
		return 0, nil
	}
	return strconv.Atoi(env)
}
