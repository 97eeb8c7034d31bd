package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fpang/gemini-explain/internal/explain"
	"github.com/fpang/gemini-explain/internal/tool"
	"github.com/fpang/gemini-explain/internal/tool/tooltest"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// writingTool simulates maim: it writes data to the last argument.
func writingTool(t *testing.T, data []byte) *tooltest.Fake {
	return &tooltest.Fake{
		ToolName: "maim",
		Fn: func(args []string) (tool.Result, error) {
			path := args[len(args)-1]
			if err := os.WriteFile(path, data, 0o600); err != nil {
				t.Fatalf("write capture: %v", err)
			}
			return tool.Result{}, nil
		},
	}
}

func TestCaptureSuccess(t *testing.T) {
	dir := t.TempDir()
	data := encodePNG(t, 64, 32)
	fake := writingTool(t, data)

	s := NewScreenshotter(fake, ScreenshotOptions{Dir: dir, Delay: time.Second})
	img, err := s.Capture(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer img.Cleanup()

	if len(fake.Calls) != 1 {
		t.Fatalf("tool called %d times, want 1", len(fake.Calls))
	}
	want := []string{"-d", "1", img.Path}
	if !reflect.DeepEqual(fake.Calls[0], want) {
		t.Errorf("args = %v, want %v", fake.Calls[0], want)
	}
	if filepath.Dir(img.Path) != dir {
		t.Errorf("capture written to %q, want dir %q", img.Path, dir)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", img.MIMEType)
	}
	if !bytes.Equal(img.Data, data) {
		t.Error("Data does not match the captured file")
	}
	if img.Width != 64 || img.Height != 32 {
		t.Errorf("size = %dx%d, want 64x32", img.Width, img.Height)
	}
}

func TestCaptureNoDelayOmitsFlag(t *testing.T) {
	fake := writingTool(t, encodePNG(t, 4, 4))
	s := NewScreenshotter(fake, ScreenshotOptions{Dir: t.TempDir()})

	img, err := s.Capture(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer img.Cleanup()

	if got := fake.Calls[0]; len(got) != 1 || got[0] != img.Path {
		t.Errorf("args = %v, want only the output path", got)
	}
}

func TestCaptureUniquePaths(t *testing.T) {
	s := NewScreenshotter(&tooltest.Fake{ToolName: "maim"}, ScreenshotOptions{Dir: t.TempDir()})
	a, b := s.NewPath(), s.NewPath()
	if a == b {
		t.Errorf("NewPath() returned %q twice", a)
	}
	if !strings.HasPrefix(filepath.Base(a), "explain-") || filepath.Ext(a) != ".png" {
		t.Errorf("unexpected capture name %q", a)
	}
}

func TestCaptureFailures(t *testing.T) {
	tests := []struct {
		name      string
		fake      func(t *testing.T) *tooltest.Fake
		wantTitle string
	}{
		{
			name:      "tool missing",
			fake:      func(*testing.T) *tooltest.Fake { return tooltest.Missing("maim") },
			wantTitle: "Dependency Missing",
		},
		{
			name:      "user cancelled",
			fake:      func(*testing.T) *tooltest.Fake { return tooltest.Exit("maim", 1, "") },
			wantTitle: "Screenshot Failed",
		},
		{
			name:      "empty file",
			fake:      func(t *testing.T) *tooltest.Fake { return writingTool(t, nil) },
			wantTitle: "Screenshot Failed",
		},
		{
			name:      "no file written",
			fake:      func(*testing.T) *tooltest.Fake { return &tooltest.Fake{ToolName: "maim"} },
			wantTitle: "Screenshot Failed",
		},
		{
			name:      "not an image",
			fake:      func(t *testing.T) *tooltest.Fake { return writingTool(t, []byte("plain text, not pixels")) },
			wantTitle: "Screenshot Failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s := NewScreenshotter(tt.fake(t), ScreenshotOptions{Dir: dir})

			img, err := s.Capture(context.Background())
			if img != nil {
				t.Error("expected nil image on failure")
			}
			var e *explain.Error
			if !errors.As(err, &e) || e.Kind != explain.KindCapture {
				t.Fatalf("expected KindCapture error, got %v", err)
			}
			if e.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", e.Title, tt.wantTitle)
			}

			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("capture dir not cleaned up: %d entries left", len(entries))
			}
		})
	}
}

func TestCaptureDownscale(t *testing.T) {
	fake := writingTool(t, encodePNG(t, 400, 200))
	s := NewScreenshotter(fake, ScreenshotOptions{Dir: t.TempDir(), MaxDimension: 100})

	img, err := s.Capture(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer img.Cleanup()

	if img.Width != 100 || img.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", img.Width, img.Height)
	}

	onDisk, err := os.ReadFile(img.Path)
	if err != nil {
		t.Fatalf("read capture: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(onDisk))
	if err != nil {
		t.Fatalf("decode capture: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("file size = %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}

func TestCaptureSmallImageNotUpscaled(t *testing.T) {
	data := encodePNG(t, 40, 20)
	s := NewScreenshotter(writingTool(t, data), ScreenshotOptions{Dir: t.TempDir(), MaxDimension: 100})

	img, err := s.Capture(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer img.Cleanup()

	if !bytes.Equal(img.Data, data) {
		t.Error("image within bounds should be sent unchanged")
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{3840, 2160, 1920, 1920, 1080},
		{1080, 1920, 960, 540, 960},
		{1000, 1000, 500, 500, 500},
		{5000, 1, 100, 100, 1},
	}

	for _, tt := range tests {
		gotW, gotH := scaledSize(tt.w, tt.h, tt.max)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("scaledSize(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestCleanupIdempotent(t *testing.T) {
	img, err := NewScreenshotter(writingTool(t, encodePNG(t, 2, 2)), ScreenshotOptions{Dir: t.TempDir()}).
		Capture(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img.Cleanup()
	img.Cleanup()

	if _, err := os.Stat(img.Path); !os.IsNotExist(err) {
		t.Errorf("capture file still exists after Cleanup: %v", err)
	}

	var nilImg *Image
	nilImg.Cleanup()
}

func TestCaptureInterrupted(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &tooltest.Fake{
		ToolName: "maim",
		Fn: func(args []string) (tool.Result, error) {
			if err := os.WriteFile(args[len(args)-1], []byte("partial"), 0o600); err != nil {
				t.Fatalf("write capture: %v", err)
			}
			cancel()
			return tool.Result{ExitCode: -1}, &tool.ExitError{Name: "maim", ExitCode: -1}
		},
	}

	img, err := NewScreenshotter(fake, ScreenshotOptions{Dir: dir}).Capture(ctx)
	if img != nil {
		t.Error("expected nil image")
	}
	if !errors.Is(err, context.Canceled) || explain.KindOf(err) == explain.KindCapture {
		t.Fatalf("expected a plain context error, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("capture dir not cleaned up: %d entries left", len(entries))
	}
}
