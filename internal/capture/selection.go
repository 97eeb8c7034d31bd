package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fpang/gemini-explain/internal/explain"
	"github.com/fpang/gemini-explain/internal/tool"
	"github.com/rs/zerolog/log"
)

const (
	noSelectionTitle   = "No Text Selected"
	noSelectionMessage = "You must highlight some text before running the script."
)

// SelectionReader reads the current text selection with a clipboard tool (xclip by default).
type SelectionReader struct {
	tool      tool.Runner
	selection string
}

// NewSelectionReader returns a reader for the named X selection ("primary",
// "clipboard"). An empty selection leaves the tool's default in place.
func NewSelectionReader(r tool.Runner, selection string) *SelectionReader {
	return &SelectionReader{tool: r, selection: selection}
}

// Read returns the selected text verbatim. A missing tool, a non-zero exit, or
// a whitespace-only selection all yield an *explain.Error of KindNoSelection.
// If ctx ends first, the plain context error is returned.
func (s *SelectionReader) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	log.Info().Str("tool", s.tool.Name()).Msg("Getting selected text")

	args := []string{"-o"}
	if s.selection != "" {
		args = append(args, "-selection", s.selection)
	}

	res, err := s.tool.Run(ctx, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("reading selection: %w", ctxErr)
		}
		if errors.Is(err, tool.ErrNotFound) {
			return "", explain.New(explain.KindNoSelection, "Dependency Missing",
				fmt.Sprintf("The '%s' utility is not installed. Please run: sudo apt install %s", s.tool.Name(), s.tool.Name()), err)
		}
		// xclip exits non-zero when the selection is empty.
		return "", explain.New(explain.KindNoSelection, noSelectionTitle, noSelectionMessage, err)
	}

	if strings.TrimSpace(res.Stdout) == "" {
		return "", explain.New(explain.KindNoSelection, noSelectionTitle, noSelectionMessage, nil)
	}

	log.Debug().Int("selection_length", len(res.Stdout)).Msg("Selected text captured")
	return res.Stdout, nil
}
