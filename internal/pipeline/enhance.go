package pipeline

import (
	"image"
	"image/color"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
)

var (
	smoothKernel = []float32{
		1, 1, 1,
		1, 5, 1,
		1, 1, 1,
	}
	blurKernel = []float32{
		1, 1, 1, 1, 1,
		1, 0, 0, 0, 1,
		1, 0, 0, 0, 1,
		1, 0, 0, 0, 1,
		1, 1, 1, 1, 1,
	}
)

// Enhancers interpolate between a degenerate image and the source:
// out = degenerate + factor*(source - degenerate).

func brightness(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: blendChannel(0, c.R, factor),
			G: blendChannel(0, c.G, factor),
			B: blendChannel(0, c.B, factor),
			A: c.A,
		}
	})
}

func contrast(img image.Image, factor float64) *image.NRGBA {
	src := asNRGBA(img)
	mean := float64(meanLuminance(src))
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: blendChannel(mean, c.R, factor),
			G: blendChannel(mean, c.G, factor),
			B: blendChannel(mean, c.B, factor),
			A: c.A,
		}
	})
}

func sharpness(img image.Image, factor float64) *image.NRGBA {
	src := asNRGBA(img)
	smooth := convolve(src, smoothKernel, 1)

	dst := image.NewNRGBA(src.Rect)
	for y := 0; y < src.Rect.Dy(); y++ {
		for x := 0; x < src.Rect.Dx(); x++ {
			si := src.PixOffset(x, y)
			di := smooth.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				dst.Pix[si+c] = blendChannel(float64(smooth.Pix[di+c]), src.Pix[si+c], factor)
			}
			dst.Pix[si+3] = src.Pix[si+3]
		}
	}
	return dst
}

func blur(img image.Image) *image.NRGBA {
	return convolve(asNRGBA(img), blurKernel, 2)
}

// convolve applies kernel to the interior of src. The outer border pixels,
// where the kernel would reach past the edge, are copied through unchanged.
func convolve(src *image.NRGBA, kernel []float32, border int) *image.NRGBA {
	g := gift.New(gift.Convolution(kernel, true, false, false, 0))
	g.SetParallelization(false)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		edgeRow := y < border || y >= h-border
		for x := 0; x < w; x++ {
			if !edgeRow && x >= border && x < w-border {
				x = w - border - 1
				continue
			}
			i := src.PixOffset(x, y)
			copy(dst.Pix[i:i+4], src.Pix[i:i+4])
		}
	}
	return dst
}

// meanLuminance is the rounded mean of ITU-R 601-2 luma over all pixels.
func meanLuminance(img *image.NRGBA) int {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	var sum uint64
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			sum += uint64(luma(row[i], row[i+1], row[i+2]))
		}
	}
	return int(float64(sum)/float64(w*h) + 0.5)
}

func luma(r, g, b uint8) uint32 {
	return (uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16
}

// blendChannel truncates toward zero after clamping to [0, 255].
func blendChannel(degenerate float64, v uint8, factor float64) uint8 {
	out := degenerate + factor*(float64(v)-degenerate)
	switch {
	case out <= 0:
		return 0
	case out >= 255:
		return 255
	default:
		return uint8(out)
	}
}

// asNRGBA returns img as a zero-origin NRGBA, cloning only when needed.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
