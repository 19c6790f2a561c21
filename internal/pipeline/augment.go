package pipeline

import (
	"image"
	"iter"

	"github.com/disintegration/imaging"
	"github.com/dunamismax/pixelaug/internal/domain"
)

const enhanceFactor = 1.50

type augmentation struct {
	tag   string
	apply func(image.Image) image.Image
}

var augmentationSet = []augmentation{
	{tag: domain.VariantFlipHorizontal, apply: func(img image.Image) image.Image { return imaging.FlipH(img) }},
	{tag: domain.VariantFlipVertical, apply: func(img image.Image) image.Image { return imaging.FlipV(img) }},
	{tag: domain.VariantRotate90, apply: func(img image.Image) image.Image { return imaging.Rotate90(img) }},
	{tag: domain.VariantRotate270, apply: func(img image.Image) image.Image { return imaging.Rotate270(img) }},
	{tag: domain.VariantBright, apply: func(img image.Image) image.Image { return brightness(img, enhanceFactor) }},
	{tag: domain.VariantContrast, apply: func(img image.Image) image.Image { return contrast(img, enhanceFactor) }},
	{tag: domain.VariantSharp, apply: func(img image.Image) image.Image { return sharpness(img, enhanceFactor) }},
	{tag: domain.VariantBlur, apply: func(img image.Image) image.Image { return blur(img) }},
}

// Variants returns the augmentation tags in emission order.
func Variants() []string {
	tags := make([]string, 0, len(augmentationSet))
	for _, a := range augmentationSet {
		tags = append(tags, a.tag)
	}
	return tags
}

// Augmentations lazily yields every (tag, image) variant of base. Each variant
// is derived from base alone, and a variant is only computed when requested.
func Augmentations(base image.Image) iter.Seq2[string, image.Image] {
	return func(yield func(string, image.Image) bool) {
		for _, a := range augmentationSet {
			if !yield(a.tag, a.apply(base)) {
				return
			}
		}
	}
}
