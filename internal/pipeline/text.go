package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fpang/gemini-explain/internal/assets"
	"github.com/fpang/gemini-explain/internal/dialog"
	"github.com/fpang/gemini-explain/internal/explain"
	"github.com/rs/zerolog/log"
)

// Instruction dialog.
const (
	PromptTitle = "AI Text Helper"
	PromptText  = "What should I do with the selected text?"
	PromptWidth = 500
)

// TextFlow applies a user-chosen instruction to the selected text.
//
// A missing selection and a missing dialog utility are shown to the user in
// exactly one error dialog (or on Stderr when no dialog can be shown). A
// cancelled prompt ends the run silently. Everything else, including a run
// timeout, is logged only.
type TextFlow struct {
	Selection SelectionReader
	Dialog    dialog.Dialog
	Model     Asker
	Renderer  Renderer
	Present   Presenter

	// DefaultInstruction pre-fills the prompt. Empty uses the built-in default.
	DefaultInstruction string

	// Stderr receives error messages when no dialog can be shown. Nil means os.Stderr.
	Stderr io.Writer

	// OnStage, when set, observes every stage transition.
	OnStage func(Stage)
}

// Run executes the flow once.
func (f *TextFlow) Run(ctx context.Context) error {
	r := newRun("text", f.OnStage)

	r.enter(StageAcquiring)
	text, err := f.Selection.Read(ctx)
	if err != nil {
		f.notify(ctx, err)
		return r.abort(err)
	}

	r.enter(StagePrompting)
	instruction, err := f.askInstruction(ctx)
	if err != nil {
		if !explain.IsCancelled(err) {
			f.notify(ctx, err)
		}
		return r.abort(err)
	}
	log.Info().Str("instruction", instruction).Msg("User instruction received")

	r.enter(StageInferring)
	answer, err := f.Model.AskText(ctx, assets.RenderTextRequest(instruction, text))
	if err != nil {
		return r.abort(err)
	}

	r.enter(StageRendering)
	html, err := f.Renderer.Render(answer)
	if err != nil {
		return r.abort(renderFailed(err))
	}

	r.enter(StagePresenting)
	r.present(f.Present, html)

	return r.done()
}

func (f *TextFlow) askInstruction(ctx context.Context) (string, error) {
	def := f.DefaultInstruction
	if def == "" {
		def = assets.DefaultTextPrompt()
	}

	instruction, err := f.Dialog.Prompt(ctx, dialog.Entry{
		Title:   PromptTitle,
		Text:    PromptText,
		Default: def,
		Width:   PromptWidth,
	})
	switch {
	case errors.Is(err, dialog.ErrCanceled):
		return "", explain.New(explain.KindPromptCancelled, "Cancelled", "user cancelled the prompt", err)
	case ctx.Err() != nil:
		return "", fmt.Errorf("waiting for instruction: %w", ctx.Err())
	case err != nil:
		return "", explain.New(explain.KindDialog, "Dependency Missing",
			"Could not show the instruction dialog. Please run: sudo apt install zenity", err)
	}

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", explain.New(explain.KindPromptCancelled, "Cancelled", "empty instruction", nil)
	}
	return instruction, nil
}

// notify shows err to the user once. Nothing is shown once ctx has ended:
// the run was timed out or interrupted, and the caller logs that.
func (f *TextFlow) notify(ctx context.Context, err error) {
	if ctx.Err() != nil || interrupted(err) {
		return
	}

	title, message := "Error", err.Error()
	var e *explain.Error
	if errors.As(err, &e) {
		title, message = e.Title, e.Message
	}

	w := f.Stderr
	if w == nil {
		w = os.Stderr
	}
	dialog.Notify(ctx, f.Dialog, w, title, message)
}
