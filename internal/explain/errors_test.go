package explain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("exit status 1")
	err := New(KindCapture, "Screenshot Failed", "screenshot failed or was cancelled", cause)

	if got, want := err.Error(), "screenshot failed or was cancelled: exit status 1"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	bare := New(KindNoSelection, "No Text Selected", "nothing selected", nil)
	if got := bare.Error(); got != "nothing selected" {
		t.Errorf("Error() = %q, want %q", got, "nothing selected")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"direct", New(KindInference, "", "gemini failed", nil), KindInference},
		{"wrapped", fmt.Errorf("stage: %w", New(KindDisplay, "", "open failed", nil)), KindDisplay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(New(KindPromptCancelled, "", "cancelled", nil)) {
		t.Error("IsCancelled() = false for KindPromptCancelled")
	}
	if IsCancelled(New(KindNoSelection, "", "empty", nil)) {
		t.Error("IsCancelled() = true for KindNoSelection")
	}
}

func TestKindString(t *testing.T) {
	if got := KindMissingCredential.String(); got != "missing_credential" {
		t.Errorf("String() = %q", got)
	}
	if got := Kind(99).String(); got != "unknown" {
		t.Errorf("String() = %q for out-of-range kind", got)
	}
}
