package cli

import (
	"context"
	"errors"

	"github.com/fpang/gemini-explain/internal/explain"
	"github.com/rs/zerolog/log"
)

// ExitCode maps the outcome of a run to a process exit status: 0 for success
// or a cancelled prompt, 1 for every failure.
func ExitCode(err error) int {
	if err == nil || explain.IsCancelled(err) {
		return 0
	}
	return 1
}

// Report returns the exit status for a finished run. Failures carrying an
// *explain.Error were already logged by the stage that raised them and by the
// flow's abort line, so only errors from outside the flows are logged here.
func Report(err error) int {
	if err == nil {
		return 0
	}

	var e *explain.Error
	switch {
	case errors.As(err, &e):
	case errors.Is(err, context.DeadlineExceeded):
		log.Error().Err(err).Msg("Run timed out")
	case errors.Is(err, context.Canceled):
		log.Warn().Err(err).Msg("Run interrupted")
	default:
		log.Error().Err(err).Msg("Unexpected error")
	}
	return ExitCode(err)
}
