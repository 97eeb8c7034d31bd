// Package chat sends explain requests to Gemini and returns the markdown answer.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/fpang/gemini-explain/internal/explain"
	"github.com/fpang/gemini-explain/internal/metrics"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Config is the explicit client configuration. Nothing is read from the
// process environment once a Client exists.
type Config struct {
	APIKey string
	Model  string
}

// generator is the subset of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client asks Gemini about text or a screenshot. The underlying genai client is
// created on first use so a missing key is reported before any network activity.
type Client struct {
	cfg Config
	gen generator
}

// New returns a Client for cfg. It performs no I/O.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModelName
	}
	return &Client{cfg: cfg}
}

// connect lazily builds the genai client.
func (c *Client) connect(ctx context.Context) (generator, error) {
	if c.gen != nil {
		return c.gen, nil
	}
	if c.cfg.APIKey == "" {
		log.Error().Msg("GEMINI_API_KEY not found")
		return nil, explain.New(explain.KindMissingCredential, "Missing API Key",
			"GEMINI_API_KEY (or GOOGLE_API_KEY) not found in the environment or .env file", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, explain.New(explain.KindInference, "AI Request Failed",
			"failed to create Gemini client", err)
	}

	log.Debug().Str("model", c.cfg.Model).Msg("Gemini client initialized")
	c.gen = client.Models
	return c.gen, nil
}

// AskText sends a text-only request and returns the response text verbatim.
func (c *Client) AskText(ctx context.Context, prompt string) (string, error) {
	log.Info().Int("prompt_length", len(prompt)).Msg("Sending text to AI for explanation")

	parts := []*genai.Part{{Text: prompt}}
	return c.generate(ctx, "text", parts)
}

// AskImage sends the instruction and the image as two parts of one request.
func (c *Client) AskImage(ctx context.Context, instruction, mimeType string, data []byte) (string, error) {
	log.Info().
		Int("image_bytes", len(data)).
		Str("mime_type", mimeType).
		Msg("Sending screenshot to AI for explanation")

	parts := []*genai.Part{
		{Text: instruction},
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
	}
	return c.generate(ctx, "screenshot", parts)
}

func (c *Client) generate(ctx context.Context, operation string, parts []*genai.Part) (string, error) {
	gen, err := c.connect(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	start := time.Now()
	resp, err := gen.GenerateContent(ctx, c.cfg.Model, contents, nil)
	elapsed := time.Since(start)

	m := metrics.New("GeminiExplain").
		Dimension("Operation", operation).
		Dimension("Model", c.cfg.Model).
		Metric("GeminiApiLatencyMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Metric("GeminiRequestBytes", float64(payloadSize(parts)), metrics.UnitBytes).
		Count("GeminiApiCalls")
	if err != nil {
		m.Count("GeminiApiErrors")
	}
	if resp != nil && resp.UsageMetadata != nil {
		m.Metric("GeminiInputTokens", float64(resp.UsageMetadata.PromptTokenCount), metrics.UnitCount)
		m.Metric("GeminiOutputTokens", float64(resp.UsageMetadata.CandidatesTokenCount), metrics.UnitCount)
	}
	m.Flush()

	if err != nil {
		cause := Classify(err)
		log.Error().
			Err(err).
			Str("cause", cause.String()).
			Msg("Error contacting AI model")
		return "", explain.New(explain.KindInference, "AI Request Failed",
			fmt.Sprintf("Gemini request failed (%s)", cause.Hint()), err)
	}

	if resp == nil {
		log.Warn().Msg("Received empty response from Gemini")
		return "", explain.New(explain.KindInference, "AI Request Failed",
			"received empty response from Gemini API", nil)
	}

	text := resp.Text()
	if text == "" {
		log.Warn().Msg("Gemini response contained no text")
		return "", explain.New(explain.KindInference, "AI Request Failed",
			"Gemini response contained no text", nil)
	}

	log.Info().
		Int("response_length", len(text)).
		Dur("duration", elapsed).
		Msg("AI response received")

	return text, nil
}

// payloadSize is the number of text and inline data bytes in parts.
func payloadSize(parts []*genai.Part) int {
	n := 0
	for _, p := range parts {
		n += len(p.Text)
		if p.InlineData != nil {
			n += len(p.InlineData.Data)
		}
	}
	return n
}
