package cli

import (
	"time"

	"github.com/fpang/gemini-explain/internal/chat"
	"github.com/fpang/gemini-explain/internal/config"
	"github.com/spf13/cobra"
)

// Flags are the command-line options shared by every explain command.
type Flags struct {
	Model    string
	EnvFile  string
	LogLevel string
	LogFile  string
	Timeout  time.Duration
}

// Register adds the shared flags to cmd.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Model, "model", "m", "", "Gemini model to use (default "+chat.DefaultModelName+")")
	cmd.Flags().StringVar(&f.EnvFile, "env-file", "", "Read settings from this .env file instead of ./.env or ~/.config/gemini-explain/.env")
	cmd.Flags().StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default $GEMINI_LOG_LEVEL or info)")
	cmd.Flags().StringVar(&f.LogFile, "log-file", "", "Also write JSON logs to this file, rotated")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 0, "Abort the whole run after this long (0 = no limit)")
}

// Options converts the parsed flags into config overrides. Flags the user did
// not set are left empty so lower-priority sources apply.
func (f *Flags) Options(cmd *cobra.Command) config.Options {
	opts := config.Options{
		EnvFile:  f.EnvFile,
		Model:    f.Model,
		LogLevel: f.LogLevel,
		LogFile:  f.LogFile,
	}
	if cmd.Flags().Changed("timeout") {
		timeout := f.Timeout
		opts.Timeout = &timeout
	}
	return opts
}
