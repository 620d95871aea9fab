package detector

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

const downscaleJPEGQuality = 85

// DownscaleJPEG re-encodes a JPEG frame to at most maxWidth pixels wide,
// preserving aspect ratio. Frames at or below maxWidth pass through
// untouched. maxWidth <= 0 disables downscaling.
func DownscaleJPEG(frame []byte, maxWidth int) ([]byte, error) {
	if maxWidth <= 0 {
		return frame, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame header: %w", err)
	}
	if cfg.Width <= maxWidth {
		return frame, nil
	}

	src, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	height := cfg.Height * maxWidth / cfg.Width
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: downscaleJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
