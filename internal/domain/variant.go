package domain

// Variant tags, in emission order. bright125 and contrast125 are applied with
// a 1.50 factor; the names are kept for output compatibility.
const (
	VariantFlipHorizontal = "flipHorizontal"
	VariantFlipVertical   = "flipVertical"
	VariantRotate90       = "rotate90degrees"
	VariantRotate270      = "rotate270"
	VariantBright         = "bright125"
	VariantContrast       = "contrast125"
	VariantSharp          = "sharp150"
	VariantBlur           = "blur"
)

const VariantsPerImage = 8

const VariantSeparator = "__"

// VariantFileName returns "{stem}__{tag}{ext}".
func VariantFileName(stem, tag, ext string) string {
	return stem + VariantSeparator + tag + ext
}
