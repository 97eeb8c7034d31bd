// Package tooltest provides a scripted tool.Runner for tests.
package tooltest

import (
	"context"

	"github.com/fpang/gemini-explain/internal/tool"
)

// Fake is a tool.Runner whose behavior is supplied by a function.
// Every invocation's arguments are recorded in Calls.
type Fake struct {
	ToolName string
	Fn       func(args []string) (tool.Result, error)
	Calls    [][]string
}

var _ tool.Runner = (*Fake)(nil)

// Name returns ToolName.
func (f *Fake) Name() string {
	return f.ToolName
}

// Run records args and delegates to Fn. A nil Fn succeeds with an empty Result.
func (f *Fake) Run(_ context.Context, args ...string) (tool.Result, error) {
	f.Calls = append(f.Calls, append([]string(nil), args...))
	if f.Fn == nil {
		return tool.Result{}, nil
	}
	return f.Fn(args)
}

// Missing returns a Fake that behaves like an executable absent from PATH.
func Missing(name string) *Fake {
	return &Fake{
		ToolName: name,
		Fn: func([]string) (tool.Result, error) {
			return tool.Result{ExitCode: -1}, &notFound{name: name}
		},
	}
}

// Exit returns a Fake that exits with the given code and stdout.
func Exit(name string, code int, stdout string) *Fake {
	return &Fake{
		ToolName: name,
		Fn: func([]string) (tool.Result, error) {
			res := tool.Result{ExitCode: code, Stdout: stdout}
			if code != 0 {
				return res, &tool.ExitError{Name: name, ExitCode: code}
			}
			return res, nil
		},
	}
}

type notFound struct{ name string }

func (e *notFound) Error() string { return e.name + ": " + tool.ErrNotFound.Error() }
func (e *notFound) Unwrap() error { return tool.ErrNotFound }
