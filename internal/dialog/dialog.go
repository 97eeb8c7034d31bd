// Package dialog shows blocking modal windows: the instruction prompt of the
// text flow and the error popups that report why a run stopped.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

var (
	// ErrCanceled is returned when the user closes a prompt or presses Cancel.
	ErrCanceled = errors.New("dialog canceled")
	// ErrUnavailable is returned when no dialog could be shown at all.
	ErrUnavailable = errors.New("dialog utility unavailable")
)

// Entry describes a single-line input prompt.
type Entry struct {
	Title   string
	Text    string
	Default string
	Width   uint
}

// Dialog shows modal windows and blocks until they are dismissed.
type Dialog interface {
	Prompt(ctx context.Context, e Entry) (string, error)
	ShowError(ctx context.Context, title, message string) error
}

// Zenity shows native dialogs through github.com/ncruces/zenity.
type Zenity struct {
	// ErrorWidth is the width of error popups. Zero uses the platform default.
	ErrorWidth uint
}

var _ Dialog = Zenity{}

// Prompt shows an entry box pre-filled with e.Default and returns what the user typed.
// When ctx ends, the context error is returned rather than ErrUnavailable.
func (z Zenity) Prompt(ctx context.Context, e Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("instruction dialog: %w", err)
	}
	opts := []zenity.Option{
		zenity.Context(ctx),
		zenity.Title(e.Title),
		zenity.EntryText(e.Default),
	}
	if e.Width > 0 {
		opts = append(opts, zenity.Width(e.Width))
	}

	text, err := zenity.Entry(e.Text, opts...)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrCanceled
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("instruction dialog: %w", ctxErr)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, nil
}

// ShowError shows an error popup.
func (z Zenity) ShowError(ctx context.Context, title, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("error dialog: %w", err)
	}
	opts := []zenity.Option{
		zenity.Context(ctx),
		zenity.Title(title),
	}
	if z.ErrorWidth > 0 {
		opts = append(opts, zenity.Width(z.ErrorWidth))
	}

	err := zenity.Error(message, opts...)
	if err != nil && !errors.Is(err, zenity.ErrCanceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Notify shows an error popup, falling back to writing the message to w when
// the dialog cannot be shown, so the user is informed through at least one channel.
func Notify(ctx context.Context, d Dialog, w io.Writer, title, message string) {
	err := d.ShowError(ctx, title, message)
	if err == nil {
		return
	}

	log.Debug().Err(err).Str("title", title).Msg("Error dialog unavailable, writing to fallback")
	fmt.Fprintf(w, "\n--- ERROR: %s ---\n%s\n", title, message)
}
