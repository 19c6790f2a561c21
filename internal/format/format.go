package format

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dunamismax/pixelaug/internal/domain"
)

var formatExtensions = map[string]domain.Format{
	".bmp":  domain.FormatBMP,
	".jpeg": domain.FormatJPEG,
	".jpg":  domain.FormatJPEG,
	".png":  domain.FormatPNG,
	".tif":  domain.FormatTIFF,
	".tiff": domain.FormatTIFF,
	".webp": domain.FormatWEBP,
}

// IsProcessable reports whether path is a regular file with a recognized image
// extension. Symlinks are followed.
func IsProcessable(path string) bool {
	if !IsRecognizedExt(filepath.Ext(path)) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func IsRecognizedExt(ext string) bool {
	_, ok := formatExtensions[strings.ToLower(ext)]
	return ok
}

// EncoderFormatFor maps an extension to its encoder. Unknown extensions fall
// back to PNG.
func EncoderFormatFor(ext string) domain.Format {
	if f, ok := formatExtensions[strings.ToLower(ext)]; ok {
		return f
	}
	return domain.FormatPNG
}

func IsJPEG(ext string) bool {
	return EncoderFormatFor(ext) == domain.FormatJPEG && IsRecognizedExt(ext)
}

func Extensions() []string {
	out := make([]string, 0, len(formatExtensions))
	for ext := range formatExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
