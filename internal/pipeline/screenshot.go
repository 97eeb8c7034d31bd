package pipeline

import (
	"context"

	"github.com/fpang/gemini-explain/internal/assets"
	"github.com/fpang/gemini-explain/internal/capture"
)

// ScreenshotFlow explains whatever is on screen. It reports failures on the
// console only.
type ScreenshotFlow struct {
	Capture  Screenshotter
	Model    Asker
	Renderer Renderer
	Present  Presenter

	// Instruction is sent alongside the image. Empty uses the built-in prompt.
	Instruction string

	// OnStage, when set, observes every stage transition.
	OnStage func(Stage)
}

// Run executes the flow once.
func (f *ScreenshotFlow) Run(ctx context.Context) error {
	r := newRun("screenshot", f.OnStage)

	r.enter(StageAcquiring)
	img, err := f.Capture.Capture(ctx)
	if err != nil {
		return r.abort(err)
	}

	r.enter(StageInferring)
	answer, err := f.infer(ctx, img)
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

// infer owns the capture file: it is removed as soon as the request finishes,
// whatever the outcome.
func (f *ScreenshotFlow) infer(ctx context.Context, img *capture.Image) (string, error) {
	defer img.Cleanup()

	instruction := f.Instruction
	if instruction == "" {
		instruction = assets.ScreenshotPrompt()
	}
	return f.Model.AskImage(ctx, instruction, img.MIMEType, img.Data)
}
