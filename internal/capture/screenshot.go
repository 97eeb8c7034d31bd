// Package capture acquires the raw input for an explain run: a full-screen
// screenshot written to a per-invocation file, or the current text selection.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fpang/gemini-explain/internal/explain"
	"github.com/fpang/gemini-explain/internal/tool"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultCaptureDelay lets the desktop settle (e.g. a hotkey overlay closing)
// before the screen is grabbed.
const DefaultCaptureDelay = time.Second

// Image is a captured screenshot. The backing file exists only until Cleanup is called.
type Image struct {
	Path     string
	MIMEType string
	Data     []byte
	Width    int
	Height   int
}

// Cleanup removes the capture file. It is safe to call more than once.
func (img *Image) Cleanup() {
	if img == nil || img.Path == "" {
		return
	}
	removeCapture(img.Path)
}

// ScreenshotOptions configures a Screenshotter.
type ScreenshotOptions struct {
	// Dir is where capture files are created. Empty means os.TempDir().
	Dir string
	// Delay is passed to the capture tool before it grabs the screen.
	Delay time.Duration
	// MaxDimension downscales captures whose width or height exceeds it. 0 disables.
	MaxDimension int
}

// Screenshotter takes full-screen captures with an external tool (maim by default).
type Screenshotter struct {
	tool tool.Runner
	opts ScreenshotOptions
}

// NewScreenshotter returns a Screenshotter driving the given capture tool.
func NewScreenshotter(r tool.Runner, opts ScreenshotOptions) *Screenshotter {
	return &Screenshotter{tool: r, opts: opts}
}

// NewPath returns a fresh capture path unique to this invocation.
func (s *Screenshotter) NewPath() string {
	dir := s.opts.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "explain-"+uuid.NewString()+".png")
}

// Capture grabs the screen. On any failure the partial file is removed and an
// *explain.Error of KindCapture is returned.
func (s *Screenshotter) Capture(ctx context.Context) (*Image, error) {
	path := s.NewPath()

	log.Info().
		Str("tool", s.tool.Name()).
		Dur("delay", s.opts.Delay).
		Msg("Preparing full-screen screenshot")

	if _, err := s.tool.Run(ctx, s.args(path)...); err != nil {
		removeCapture(path)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("capturing screenshot: %w", ctxErr)
		}
		if errors.Is(err, tool.ErrNotFound) {
			return nil, explain.New(explain.KindCapture, "Dependency Missing",
				fmt.Sprintf("screenshot failed: is '%s' installed?", s.tool.Name()), err)
		}
		return nil, explain.New(explain.KindCapture, "Screenshot Failed",
			"screenshot failed or was cancelled", err)
	}

	img, err := s.load(path)
	if err != nil {
		removeCapture(path)
		return nil, err
	}

	log.Info().
		Str("path", img.Path).
		Str("mime_type", img.MIMEType).
		Int("bytes", len(img.Data)).
		Int("width", img.Width).
		Int("height", img.Height).
		Msg("Screenshot saved")

	return img, nil
}

// args builds the capture tool command line: [-d <seconds>] <path>.
func (s *Screenshotter) args(path string) []string {
	var args []string
	if s.opts.Delay > 0 {
		args = append(args, "-d", strconv.FormatFloat(s.opts.Delay.Seconds(), 'f', -1, 64))
	}
	return append(args, path)
}

// load validates the capture file and reads it into an Image, downscaling if configured.
func (s *Screenshotter) load(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil, explain.New(explain.KindCapture, "Screenshot Failed",
			"screenshot failed or was cancelled", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, explain.New(explain.KindCapture, "Screenshot Failed",
			"failed to read screenshot", err)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, explain.New(explain.KindCapture, "Screenshot Failed",
			fmt.Sprintf("capture tool produced %s, not an image", mtype.String()), nil)
	}

	img := &Image{
		Path:     path,
		MIMEType: mtype.String(),
		Data:     data,
	}

	if err := fitWithin(img, s.opts.MaxDimension); err != nil {
		return nil, explain.New(explain.KindCapture, "Screenshot Failed",
			"failed to downscale screenshot", err)
	}

	return img, nil
}

func removeCapture(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("Failed to remove screenshot")
		return
	}
	log.Debug().Str("path", path).Msg("Screenshot removed")
}
