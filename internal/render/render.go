// Package render turns a markdown answer into a standalone HTML page with
// syntax-highlighted code blocks and an embedded stylesheet. Rendering is pure:
// the same markdown and options always produce byte-identical output.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/fpang/gemini-explain/internal/assets"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// DefaultStyle is the light chroma theme matching Pygments' "default" style.
const DefaultStyle = "pygments"

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "AI Explain Helper"

// Options configures a Renderer.
type Options struct {
	// Title is the page <title>.
	Title string
	// Style is the chroma style name for code highlighting. Empty uses DefaultStyle.
	Style string
}

// Renderer converts markdown into a complete HTML document.
type Renderer struct {
	title string
	md    goldmark.Markdown
	page  *template.Template
	css   string
}

// pageData is the data passed to assets.PageTemplate.
type pageData struct {
	Title   string
	CodeCSS template.CSS
	Body    template.HTML
}

// New builds a Renderer. The code stylesheet is generated once here.
func New(opts Options) (*Renderer, error) {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Style == "" {
		opts.Style = DefaultStyle
	}

	style := styles.Get(opts.Style)
	css, err := stylesheet(style)
	if err != nil {
		return nil, err
	}

	page, err := template.New("page").Parse(assets.PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(opts.Style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
	)

	return &Renderer{
		title: opts.Title,
		md:    md,
		page:  page,
		css:   css,
	}, nil
}

// Stylesheet returns the CSS rules for highlighted code.
func (r *Renderer) Stylesheet() string {
	return r.css
}

// Fragment converts markdown into an HTML fragment without the page wrapper.
func (r *Renderer) Fragment(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Render converts markdown into a full HTML document with embedded styles.
func (r *Renderer) Render(markdown string) (string, error) {
	body, err := r.Fragment(markdown)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = r.page.Execute(&buf, pageData{
		Title:   r.title,
		CodeCSS: template.CSS(r.css),
		Body:    template.HTML(body),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return buf.String(), nil
}

// stylesheet generates class-based CSS for the given chroma style.
func stylesheet(style *chroma.Style) (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("failed to generate code stylesheet: %w", err)
	}
	return buf.String(), nil
}
