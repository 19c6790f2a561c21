package pipeline

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/dunamismax/pixelaug/internal/format"
)

// Mode is the colour layout of a decoded image, derived from its concrete type.
type Mode string

const (
	ModeL     Mode = "L"
	ModeRGB   Mode = "RGB"
	ModeRGBA  Mode = "RGBA"
	ModeCMYK  Mode = "CMYK"
	ModeP     Mode = "P"
	ModeOther Mode = "other"
)

var compositeBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// ModeOf classifies img. Go decoders expand grey+alpha sources into NRGBA, so
// those report as RGBA. RGBA-backed images with no translucent pixel report RGB.
func ModeOf(img image.Image) Mode {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return ModeL
	case *image.YCbCr:
		return ModeRGB
	case *image.CMYK:
		return ModeCMYK
	case *image.Paletted:
		return ModeP
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64, *image.NYCbCrA:
		if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	default:
		return ModeOther
	}
}

// NormalizeBase returns an RGB rendition of img. Translucent images are
// composited over opaque white so transparent areas do not go black under the
// enhancement filters. img is never modified.
func NormalizeBase(img image.Image) image.Image {
	switch ModeOf(img) {
	case ModeRGB:
		return img
	case ModeRGBA:
		return compositeOver(img, compositeBackground)
	default:
		return toRGB(img)
	}
}

// EnforceJPEGSafety converts img to RGB when ext is a JPEG extension and the
// mode is neither RGB nor L.
func EnforceJPEGSafety(img image.Image, ext string) image.Image {
	if !format.IsJPEG(ext) {
		return img
	}
	switch ModeOf(img) {
	case ModeRGB, ModeL:
		return img
	default:
		return toRGB(img)
	}
}

func compositeOver(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// toRGB drops alpha and keeps the un-premultiplied colour channels.
func toRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
