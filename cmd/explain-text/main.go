package main

import (
	"context"
	"os"

	"github.com/fpang/gemini-explain/internal/capture"
	"github.com/fpang/gemini-explain/internal/chat"
	"github.com/fpang/gemini-explain/internal/cli"
	"github.com/fpang/gemini-explain/internal/config"
	"github.com/fpang/gemini-explain/internal/dialog"
	"github.com/fpang/gemini-explain/internal/pipeline"
	"github.com/fpang/gemini-explain/internal/present"
	"github.com/fpang/gemini-explain/internal/render"
	"github.com/fpang/gemini-explain/internal/tool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CLI flags
var (
	flags         cli.Flags
	selectionFlag string
)

// errorDialogWidth matches the instruction prompt's compact layout.
const errorDialogWidth = 350

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "explain-text",
	Short: "Apply a Gemini instruction to the selected text",
	Long: `explain-text reads the highlighted text, asks what to do with it, sends both to
Gemini and opens the answer in your browser.

Problems that need your attention (nothing selected, no dialog utility) are
shown in a dialog; everything else is logged to stderr.

Examples:
  explain-text
  explain-text --selection clipboard
  explain-text -m gemini-2.5-flash --log-file ~/.cache/explain.log`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run:           runMain,
}

func init() {
	flags.Register(rootCmd)
	rootCmd.Flags().StringVar(&selectionFlag, "selection", "", "X selection to read: primary, secondary or clipboard (default primary)")
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
	opts.ClipboardSelection = selectionFlag

	ctx, cancel, cfg, err := cli.Setup(context.Background(), "explain-text", opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	code := cli.Report(run(ctx, cfg))
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config) error {
	renderer, err := render.New(render.Options{Title: "AI Text Helper"})
	if err != nil {
		return err
	}

	flow := &pipeline.TextFlow{
		Selection:          capture.NewSelectionReader(tool.New(cfg.ClipboardTool), cfg.ClipboardSelection),
		Dialog:             dialog.Zenity{ErrorWidth: errorDialogWidth},
		Model:              chat.New(chat.Config{APIKey: cfg.APIKey, Model: cfg.Model}),
		Renderer:           renderer,
		Present:            present.New(cfg.OutputDir),
		DefaultInstruction: cfg.DefaultTextPrompt,
		Stderr:             os.Stderr,
	}
	return flow.Run(ctx)
}
