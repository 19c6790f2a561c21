//go:build govips && cgo

package pipeline

import (
	"fmt"
	"image"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/dunamismax/pixelaug/internal/domain"
)

// govipsEncoder hands the image to libvips as lossless PNG and exports from
// there. BMP and TIFF stay on the pure-Go encoder.
type govipsEncoder struct {
	fallback stdlibEncoder
}

func (e govipsEncoder) Encode(img image.Image, f domain.Format) ([]byte, error) {
	switch f {
	case domain.FormatJPEG, domain.FormatPNG, domain.FormatWEBP:
	default:
		return e.fallback.Encode(img, f)
	}

	raw, err := e.fallback.Encode(img, domain.FormatPNG)
	if err != nil {
		return nil, fmt.Errorf("stage image for libvips: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(raw)
	if err != nil {
		return nil, fmt.Errorf("load image into libvips: %w", err)
	}
	defer ref.Close()

	switch f {
	case domain.FormatJPEG:
		params := vips.NewJpegExportParams()
		params.Quality = JPEGQuality
		params.OptimizeCoding = true
		data, _, err := ref.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return data, nil
	case domain.FormatPNG:
		data, _, err := ref.ExportPng(vips.NewPngExportParams())
		if err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return data, nil
	default:
		data, _, err := ref.ExportWebp(vips.NewWebpExportParams())
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	}
}
