// Package explain defines the error taxonomy shared by every stage of the
// screenshot and text explain flows.
package explain

import "errors"

// Kind categorizes why a run ended early.
type Kind int

const (
	// KindUnknown is reported for errors that are not an *Error.
	KindUnknown Kind = iota
	// KindCapture indicates the screenshot could not be taken.
	KindCapture
	// KindNoSelection indicates there was no usable text selection.
	KindNoSelection
	// KindPromptCancelled indicates the user dismissed the instruction dialog.
	KindPromptCancelled
	// KindMissingCredential indicates no API key was configured.
	KindMissingCredential
	// KindInference indicates the Gemini call failed.
	KindInference
	// KindDisplay indicates the rendered page could not be written or opened.
	// It never ends a run.
	KindDisplay
	// KindDialog indicates the instruction dialog could not be shown at all.
	KindDialog
	// KindRender indicates the answer could not be turned into a page.
	KindRender
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindCapture:           "capture",
	KindNoSelection:       "no_selection",
	KindPromptCancelled:   "prompt_cancelled",
	KindMissingCredential: "missing_credential",
	KindInference:         "inference",
	KindDisplay:           "display",
	KindDialog:            "dialog",
	KindRender:            "render",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is a run-terminating failure. Title is a short heading suitable for a
// dialog window; Message is the user-facing explanation.
type Error struct {
	Kind    Kind
	Title   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an *Error of the given kind.
func New(kind Kind, title, message string, err error) *Error {
	return &Error{Kind: kind, Title: title, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsCancelled reports whether err is a silent prompt cancellation.
func IsCancelled(err error) bool {
	return KindOf(err) == KindPromptCancelled
}
