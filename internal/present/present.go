// Package present writes a rendered page to a temporary file and opens it in
// the user's default browser. The file is left on disk so the browser can keep
// reading it after the process exits.
package present

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fpang/gemini-explain/internal/explain"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

// Opener opens a URL in a browser.
type Opener func(url string) error

// Result describes the persisted page.
type Result struct {
	Path string
	URL  string
}

// Presenter persists and opens rendered pages.
type Presenter struct {
	dir  string
	open Opener
}

// New returns a Presenter writing into dir (os.TempDir() when empty) and
// opening pages with the system default browser.
func New(dir string) *Presenter {
	return &Presenter{dir: dir, open: browser.OpenURL}
}

// WithOpener replaces the browser launcher.
func (p *Presenter) WithOpener(open Opener) *Presenter {
	p.open = open
	return p
}

// Show writes html to a new uniquely named .html file and opens it.
// Failures are *explain.Error values of KindDisplay. When the file was written
// but the browser could not be launched, the returned Result still carries the path.
func (p *Presenter) Show(html string) (Result, error) {
	f, err := os.CreateTemp(p.dir, "explain-*.html")
	if err != nil {
		return Result{}, explain.New(explain.KindDisplay, "Display Failed",
			"could not create the HTML file", err)
	}

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return Result{}, explain.New(explain.KindDisplay, "Display Failed",
			"could not write the HTML file", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, explain.New(explain.KindDisplay, "Display Failed",
			"could not write the HTML file", err)
	}

	path, err := filepath.Abs(f.Name())
	if err != nil {
		path = f.Name()
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	res := Result{Path: path, URL: FileURL(path)}
	log.Info().Str("path", res.Path).Msg("Temporary HTML file created")

	if err := p.open(res.URL); err != nil {
		return res, explain.New(explain.KindDisplay, "Display Failed",
			fmt.Sprintf("could not open %s in a browser", res.Path), err)
	}

	log.Info().Str("url", res.URL).Msg("Opened in browser")
	return res, nil
}

// FileURL returns the file:// URL for an absolute path.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
