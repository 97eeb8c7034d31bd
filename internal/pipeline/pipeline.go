// Package pipeline runs the explain flows: acquire input, assemble a prompt,
// ask Gemini, render the answer and open it in the browser.
//
// Both flows are strictly linear and stop at the first failure:
//
//	Start → Acquiring → (Prompting →)? Inferring → Rendering → Presenting → Done
//
// Aborted is reachable from every stage. Collaborators are interfaces so the
// flows run in tests without processes, network or a browser.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/fpang/gemini-explain/internal/capture"
	"github.com/fpang/gemini-explain/internal/explain"
	"github.com/fpang/gemini-explain/internal/metrics"
	"github.com/fpang/gemini-explain/internal/present"
	"github.com/rs/zerolog/log"
)

// Stage is a state of a run.
type Stage string

const (
	StageAcquiring  Stage = "acquiring"
	StagePrompting  Stage = "prompting"
	StageInferring  Stage = "inferring"
	StageRendering  Stage = "rendering"
	StagePresenting Stage = "presenting"
	StageDone       Stage = "done"
	StageAborted    Stage = "aborted"
)

// Screenshotter captures the screen.
type Screenshotter interface {
	Capture(ctx context.Context) (*capture.Image, error)
}

// SelectionReader reads the current text selection.
type SelectionReader interface {
	Read(ctx context.Context) (string, error)
}

// Asker sends a request to the model and returns its markdown answer.
type Asker interface {
	AskText(ctx context.Context, prompt string) (string, error)
	AskImage(ctx context.Context, instruction, mimeType string, data []byte) (string, error)
}

// Renderer turns markdown into a complete HTML document.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Presenter persists a document and opens it for the user.
type Presenter interface {
	Show(html string) (present.Result, error)
}

// run tracks the stage of one flow invocation.
type run struct {
	flow    string
	stage   Stage
	start   time.Time
	onStage func(Stage)
}

func newRun(flow string, onStage func(Stage)) *run {
	return &run{flow: flow, start: time.Now(), onStage: onStage}
}

func (r *run) enter(s Stage) {
	r.stage = s
	log.Debug().Str("flow", r.flow).Str("stage", string(s)).Msg("Stage entered")
	if r.onStage != nil {
		r.onStage(s)
	}
}

// abort moves the run to Aborted and returns err unchanged.
func (r *run) abort(err error) error {
	failed := r.stage
	kind := explain.KindOf(err)
	kindName := kind.String()
	if interrupted(err) {
		kindName = "interrupted"
	}

	evt := log.Error()
	if kind == explain.KindPromptCancelled {
		evt = log.Info()
	}
	evt.Err(err).
		Str("flow", r.flow).
		Str("stage", string(failed)).
		Str("kind", kindName).
		Msg("Run aborted")

	r.enter(StageAborted)
	r.flush("aborted", failed)
	return err
}

func (r *run) done() error {
	log.Info().
		Str("flow", r.flow).
		Dur("duration", time.Since(r.start)).
		Msg("Run complete")

	r.enter(StageDone)
	r.flush("done", "")
	return nil
}

func (r *run) flush(outcome string, failed Stage) {
	m := metrics.New("GeminiExplain").
		Dimension("Flow", r.flow).
		Dimension("Outcome", outcome).
		Metric("RunDurationMs", float64(time.Since(r.start).Milliseconds()), metrics.UnitMilliseconds).
		Count("Runs")
	if failed != "" {
		m.Property("failedStage", string(failed))
	}
	m.Flush()
}

// present shows the page. Failures are reported but never fail the run.
func (r *run) present(p Presenter, html string) {
	res, err := p.Show(html)
	if err != nil {
		evt := log.Warn().Err(err).Str("flow", r.flow)
		if res.Path != "" {
			evt = evt.Str("path", res.Path)
		}
		evt.Msg("Could not display the answer; open the file manually")
		return
	}
	log.Info().Str("path", res.Path).Str("url", res.URL).Msg("Answer opened in browser")
}

func renderFailed(err error) error {
	return explain.New(explain.KindRender, "Render Failed", "could not render the answer", err)
}

// interrupted reports whether err comes from the run's context ending.
func interrupted(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
