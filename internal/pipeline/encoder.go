package pipeline

import (
	"errors"
	"image"

	"github.com/dunamismax/pixelaug/internal/domain"
	"github.com/dunamismax/pixelaug/internal/format"
)

const JPEGQuality = 95

var ErrUnsupportedFormat = errors.New("unsupported output format")

type Encoder interface {
	Encode(img image.Image, f domain.Format) ([]byte, error)
}

// Encode serializes img in the format implied by ext using the build's
// default backend.
func Encode(img image.Image, ext string) ([]byte, error) {
	enc, err := newEncoder()
	if err != nil {
		return nil, err
	}
	return enc.Encode(img, format.EncoderFormatFor(ext))
}
