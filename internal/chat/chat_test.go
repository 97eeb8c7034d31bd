package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/fpang/gemini-explain/internal/explain"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls int
	model string
	parts []*genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	if len(contents) > 0 {
		f.parts = contents[0].Parts
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func newTestClient(gen generator) *Client {
	c := New(Config{APIKey: "test-key"})
	c.gen = gen
	return c
}

func TestMissingCredential(t *testing.T) {
	c := New(Config{})

	_, err := c.AskText(context.Background(), "hello")
	if explain.KindOf(err) != explain.KindMissingCredential {
		t.Fatalf("expected KindMissingCredential, got %v", err)
	}
	if c.gen != nil {
		t.Error("client created despite missing key")
	}

	_, err = c.AskImage(context.Background(), "explain", "image/png", []byte{1})
	if explain.KindOf(err) != explain.KindMissingCredential {
		t.Fatalf("expected KindMissingCredential, got %v", err)
	}
}

func TestDefaultModel(t *testing.T) {
	if got := New(Config{APIKey: "k"}).cfg.Model; got != DefaultModelName {
		t.Errorf("model = %q, want %q", got, DefaultModelName)
	}
	if got := New(Config{APIKey: "k", Model: ModelGemini25Pro}).cfg.Model; got != ModelGemini25Pro {
		t.Errorf("model = %q, want %q", got, ModelGemini25Pro)
	}
}

func TestAskText(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("# Answer\n\nIt works.")}
	c := newTestClient(gen)

	got, err := c.AskText(context.Background(), "why?")
	if err != nil {
		t.Fatalf("AskText() error: %v", err)
	}
	if got != "# Answer\n\nIt works." {
		t.Errorf("AskText() = %q, want the response verbatim", got)
	}
	if gen.model != DefaultModelName {
		t.Errorf("model = %q, want %q", gen.model, DefaultModelName)
	}
	if len(gen.parts) != 1 || gen.parts[0].Text != "why?" {
		t.Errorf("unexpected parts: %+v", gen.parts)
	}
}

func TestAskImageSendsTwoParts(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("looks like a nil pointer")}
	c := newTestClient(gen)

	data := []byte{0x89, 'P', 'N', 'G'}
	if _, err := c.AskImage(context.Background(), "Explain this", "image/png", data); err != nil {
		t.Fatalf("AskImage() error: %v", err)
	}

	if len(gen.parts) != 2 {
		t.Fatalf("sent %d parts, want 2", len(gen.parts))
	}
	if gen.parts[0].Text != "Explain this" {
		t.Errorf("first part = %+v, want the instruction", gen.parts[0])
	}
	blob := gen.parts[1].InlineData
	if blob == nil || blob.MIMEType != "image/png" || string(blob.Data) != string(data) {
		t.Errorf("second part = %+v, want the image blob", gen.parts[1])
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"transport error", &fakeGenerator{err: errors.New("dial tcp: no such host")}},
		{"nil response", &fakeGenerator{}},
		{"no text", &fakeGenerator{resp: &genai.GenerateContentResponse{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient(tt.gen).AskText(context.Background(), "q")
			if explain.KindOf(err) != explain.KindInference {
				t.Fatalf("expected KindInference, got %v", err)
			}
			if tt.gen.calls != 1 {
				t.Errorf("GenerateContent called %d times, want exactly 1 (no retry)", tt.gen.calls)
			}
			if tt.gen.err != nil && !errors.Is(err, tt.gen.err) {
				t.Error("inference error does not wrap the cause")
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{"nil", nil, CauseUnknown},
		{"canceled", context.Canceled, CauseCanceled},
		{"deadline", context.DeadlineExceeded, CauseCanceled},
		{"api 403", &genai.APIError{Code: 403}, CauseInvalidKey},
		{"api 429", &genai.APIError{Code: 429}, CauseQuotaExceeded},
		{"api 503", &genai.APIError{Code: 503}, CauseNetwork},
		{"api 418", &genai.APIError{Code: 418}, CauseUnknown},
		{"invalid key text", errors.New("API key not valid. Please pass a valid API key."), CauseInvalidKey},
		{"quota text", errors.New("Resource exhausted: quota"), CauseQuotaExceeded},
		{"network text", errors.New("dial tcp: lookup generativelanguage.googleapis.com: no such host"), CauseNetwork},
		{"other", errors.New("boom"), CauseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsKnownModel(t *testing.T) {
	if !IsKnownModel(ModelGemini25Flash) {
		t.Error("IsKnownModel(gemini-2.5-flash) = false")
	}
	if IsKnownModel("gemini-1.0-ultra") {
		t.Error("IsKnownModel(gemini-1.0-ultra) = true")
	}
}

func TestPayloadSize(t *testing.T) {
	parts := []*genai.Part{
		{Text: "Explain this"},
		{InlineData: &genai.Blob{MIMEType: "image/png", Data: make([]byte, 100)}},
	}
	if got := payloadSize(parts); got != len("Explain this")+100 {
		t.Errorf("payloadSize() = %d, want %d", got, len("Explain this")+100)
	}
}
