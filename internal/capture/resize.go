package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// fitWithin records the image dimensions and, when maxDimension > 0 and the
// capture is larger, rewrites the file as a PNG scaled to fit, preserving
// aspect ratio. Images already within bounds are never upscaled.
func fitWithin(img *Image, maxDimension int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		if maxDimension <= 0 {
			return nil
		}
		return fmt.Errorf("failed to read image header: %w", err)
	}
	img.Width, img.Height = cfg.Width, cfg.Height

	if maxDimension <= 0 || (cfg.Width <= maxDimension && cfg.Height <= maxDimension) {
		return nil
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	w, h := scaledSize(cfg.Width, cfg.Height, maxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := os.WriteFile(img.Path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write downscaled image: %w", err)
	}

	log.Debug().
		Int("from_width", cfg.Width).
		Int("from_height", cfg.Height).
		Int("to_width", w).
		Int("to_height", h).
		Int("bytes", buf.Len()).
		Msg("Screenshot downscaled")

	img.Data = buf.Bytes()
	img.MIMEType = "image/png"
	img.Width, img.Height = w, h
	return nil
}

// scaledSize returns the largest size with the same aspect ratio whose longer
// side equals maxDimension. Neither side is allowed to collapse to zero.
func scaledSize(width, height, maxDimension int) (int, int) {
	if width >= height {
		h := height * maxDimension / width
		if h < 1 {
			h = 1
		}
		return maxDimension, h
	}
	w := width * maxDimension / height
	if w < 1 {
		w = 1
	}
	return w, maxDimension
}
