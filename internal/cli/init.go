// Package cli holds the setup and exit handling shared by the explain commands.
package cli

import (
	"context"
	"strconv"

	"github.com/fpang/gemini-explain/internal/config"
	"github.com/fpang/gemini-explain/internal/logging"
	"github.com/rs/zerolog/log"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// Setup initializes logging, loads the configuration and logs the startup
// summary. The returned cancel func must always be called.
func Setup(ctx context.Context, name string, opts config.Options) (context.Context, context.CancelFunc, *config.Config, error) {
	// Honor --log-level while the config itself is loading.
	logging.Init(logging.Options{Level: opts.LogLevel})

	cfg, err := config.Load(ctx, opts)
	if err != nil {
		return ctx, func() {}, nil, err
	}

	logging.Init(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	logging.Startup(name).
		Version(Version).
		Tool("capture", cfg.CaptureTool).
		Tool("clipboard", cfg.ClipboardTool).
		Config("model", cfg.Model).
		Config("credentialSource", cfg.CredentialSource).
		Config("envFile", cfg.EnvFile).
		Config("outputDir", cfg.OutputDir).
		Config("timeout", cfg.Timeout.String()).
		Feature("logFile", cfg.LogFile != "").
		Feature("downscale", cfg.MaxImageDimension > 0).
		Config("maxImageDimension", strconv.Itoa(cfg.MaxImageDimension)).
		Log()

	if cfg.Timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		return ctx, cancel, cfg, nil
	}
	ctx, cancel := context.WithCancel(ctx)
	log.Debug().Msg("No run timeout configured")
	return ctx, cancel, cfg, nil
}
