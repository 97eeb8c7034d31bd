// Package tool wraps the external desktop utilities (screenshot capture,
// clipboard reader, gpg) behind a single Runner interface so callers can be
// exercised in tests without spawning processes.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the tool's executable is not on PATH.
var ErrNotFound = errors.New("tool not found in PATH")

// Result is the outcome of one tool invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ExitError reports a tool that ran but exited with a non-zero status.
type ExitError struct {
	Name     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Name, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Runner runs an external tool with the given arguments and blocks until it exits.
type Runner interface {
	Name() string
	Run(ctx context.Context, args ...string) (Result, error)
}

// Command is a Runner backed by os/exec.
type Command struct {
	name string
}

// Ensure Command implements Runner
var _ Runner = (*Command)(nil)

// New returns a Runner for the named executable.
func New(name string) *Command {
	return &Command{name: name}
}

// Name returns the executable name.
func (c *Command) Name() string {
	return c.name
}

// Run executes the tool. A missing executable yields an error wrapping
// ErrNotFound; a non-zero exit yields an *ExitError with Result still populated.
// When ctx ends first, the error wraps ctx.Err() instead.
func (c *Command) Run(ctx context.Context, args ...string) (Result, error) {
	path, err := exec.LookPath(c.name)
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%s: %w", c.name, ErrNotFound)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().
		Str("tool", c.name).
		Strs("args", args).
		Msg("Running external tool")

	start := time.Now()
	err = cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.ExitCode = -1
			return res, fmt.Errorf("%s interrupted: %w", c.name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			log.Debug().
				Str("tool", c.name).
				Int("exit_code", res.ExitCode).
				Dur("duration", time.Since(start)).
				Msg("External tool failed")
			return res, &ExitError{Name: c.name, ExitCode: res.ExitCode, Stderr: res.Stderr}
		}
		res.ExitCode = -1
		return res, fmt.Errorf("failed to run %s: %w", c.name, err)
	}

	log.Debug().
		Str("tool", c.name).
		Int("stdout_bytes", len(res.Stdout)).
		Dur("duration", time.Since(start)).
		Msg("External tool finished")

	return res, nil
}
