package main

import (
	"context"
	"os"
	"time"

	"github.com/fpang/gemini-explain/internal/capture"
	"github.com/fpang/gemini-explain/internal/chat"
	"github.com/fpang/gemini-explain/internal/cli"
	"github.com/fpang/gemini-explain/internal/config"
	"github.com/fpang/gemini-explain/internal/pipeline"
	"github.com/fpang/gemini-explain/internal/present"
	"github.com/fpang/gemini-explain/internal/render"
	"github.com/fpang/gemini-explain/internal/tool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CLI flags
var (
	flags            cli.Flags
	promptFlag       string
	delayFlag        time.Duration
	maxDimensionFlag int
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "explain-screenshot",
	Short: "Explain whatever is on screen with Gemini",
	Long: `explain-screenshot captures the full screen, asks Gemini to explain the code,
question or error message it shows, and opens the answer in your browser.

Bind it to a hotkey; nothing is read from the terminal.

Examples:
  explain-screenshot
  explain-screenshot --delay 3s
  explain-screenshot -p "Translate the text in this screenshot to English"
  explain-screenshot --max-dimension 1920 -m gemini-2.5-pro`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run:           runMain,
}

func init() {
	flags.Register(rootCmd)
	rootCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "Instruction sent with the screenshot (default: explain and solve)")
	rootCmd.Flags().DurationVar(&delayFlag, "delay", capture.DefaultCaptureDelay, "Wait this long before capturing")
	rootCmd.Flags().IntVar(&maxDimensionFlag, "max-dimension", 0, "Downscale screenshots larger than this many pixels (0 = send as captured)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Invalid command line")
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	opts := flags.Options(cmd)
	opts.ScreenshotPrompt = promptFlag
	if cmd.Flags().Changed("delay") {
		opts.CaptureDelay = &delayFlag
	}
	if cmd.Flags().Changed("max-dimension") {
		opts.MaxImageDimension = &maxDimensionFlag
	}

	ctx, cancel, cfg, err := cli.Setup(context.Background(), "explain-screenshot", opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	code := cli.Report(run(ctx, cfg))
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config) error {
	renderer, err := render.New(render.Options{Title: "AI Screenshot Helper"})
	if err != nil {
		return err
	}

	flow := &pipeline.ScreenshotFlow{
		Capture: capture.NewScreenshotter(tool.New(cfg.CaptureTool), capture.ScreenshotOptions{
			Dir:          cfg.OutputDir,
			Delay:        cfg.CaptureDelay,
			MaxDimension: cfg.MaxImageDimension,
		}),
		Model:       chat.New(chat.Config{APIKey: cfg.APIKey, Model: cfg.Model}),
		Renderer:    renderer,
		Present:     present.New(cfg.OutputDir),
		Instruction: cfg.ScreenshotPrompt,
	}
	return flow.Run(ctx)
}
