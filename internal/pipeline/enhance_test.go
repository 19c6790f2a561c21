package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/dunamismax/pixelaug/internal/domain"
)

func TestBlendChannelTruncates(t *testing.T) {
	cases := []struct {
		degenerate float64
		v          uint8
		want       uint8
	}{
		{0, 101, 151},   // 151.5
		{0, 3, 4},       // 4.5
		{100, 81, 71},   // 71.5
		{100, 119, 128}, // 128.5
		{0, 200, 255},
		{200, 10, 0},
	}
	for _, tc := range cases {
		if got := blendChannel(tc.degenerate, tc.v, enhanceFactor); got != tc.want {
			t.Fatalf("blendChannel(%v, %d): expected %d, got %d", tc.degenerate, tc.v, tc.want, got)
		}
	}
}

func TestBrightnessOnHalfStepValues(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	base.SetNRGBA(0, 0, color.NRGBA{R: 101, G: 33, B: 7, A: 255})

	got := pixel(collect(base)[domain.VariantBright], 0, 0)
	if got != (color.NRGBA{R: 151, G: 49, B: 10, A: 255}) {
		t.Fatalf("unexpected brightened pixel %v", got)
	}
}

func TestFilterVariantsCopyBorderThrough(t *testing.T) {
	base := gradientImage(9, 7)
	base.SetNRGBA(4, 3, color.NRGBA{R: 60, G: 60, B: 60, A: 255})
	variants := collect(base)

	for _, tc := range []struct {
		tag    string
		border int
	}{
		{domain.VariantSharp, 1},
		{domain.VariantBlur, 2},
	} {
		out := variants[tc.tag]
		w, h := 9, 7
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				onBorder := x < tc.border || x >= w-tc.border || y < tc.border || y >= h-tc.border
				if !onBorder {
					continue
				}
				if got, want := pixel(out, x, y), pixel(base, x, y); got != want {
					t.Fatalf("%s: border pixel (%d,%d) changed from %v to %v", tc.tag, x, y, want, got)
				}
			}
		}
	}

	for _, tag := range []string{domain.VariantSharp, domain.VariantBlur} {
		if pixel(variants[tag], 4, 3) == pixel(base, 4, 3) {
			t.Fatalf("%s: expected interior pixel to be filtered", tag)
		}
	}
}

func TestConvolveSmallImageIsAllBorder(t *testing.T) {
	base := gradientImage(3, 3)
	out := blur(base)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if pixel(out, x, y) != pixel(base, x, y) {
				t.Fatalf("pixel (%d,%d) changed on an image smaller than the kernel", x, y)
			}
		}
	}
}
