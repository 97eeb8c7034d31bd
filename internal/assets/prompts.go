package assets

// Prompt templates are stored as text files under prompts/ and embedded at compile time.

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// --- Static prompts (no dynamic data) ---

//go:embed prompts/screenshot.txt
var screenshotPrompt string

//go:embed prompts/text-default.txt
var textDefaultPrompt string

// ScreenshotPrompt is the fixed instruction sent alongside a screenshot.
func ScreenshotPrompt() string {
	return strings.TrimSpace(screenshotPrompt)
}

// DefaultTextPrompt is the instruction pre-filled in the text flow's prompt dialog.
func DefaultTextPrompt() string {
	return strings.TrimSpace(textDefaultPrompt)
}

// --- Dynamic prompt templates ---

//go:embed prompts/text-request.txt
var textRequestTemplate string

// Pre-parsed templates. template.Must panics on malformed templates,
// catching errors at program startup rather than at call time.
var textRequestTmpl = template.Must(template.New("text-request").Parse(textRequestTemplate))

// TextRequestData holds the dynamic data injected into the text request template.
type TextRequestData struct {
	Instruction string
	Text        string
}

// RenderTextRequest combines the user's instruction with the selected text
// into a single request, the selection fenced between --- lines.
func RenderTextRequest(instruction, text string) string {
	var buf bytes.Buffer
	// Execution only fails on a broken writer or template; neither applies here.
	_ = textRequestTmpl.Execute(&buf, TextRequestData{Instruction: instruction, Text: text})
	return buf.String()
}
