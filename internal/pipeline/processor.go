package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dunamismax/pixelaug/internal/domain"
	"github.com/dunamismax/pixelaug/internal/format"
	_ "golang.org/x/image/webp"
)

type Output struct {
	Variant string
	RelPath string
	Path    string
	Format  domain.Format
	Bytes   int
}

// FileResult is the outcome of augmenting one source file. Outputs holds every
// variant written before Err, if any, stopped the file.
type FileResult struct {
	Source  domain.SourceFile
	Outputs []Output
	Err     error
}

type Fetcher interface {
	Fetch(ctx context.Context, src domain.SourceFile) (io.ReadCloser, error)
}

type Emitter interface {
	Emit(ctx context.Context, relPath string, data []byte, f domain.Format) (Output, error)
}

type Processor struct {
	fetcher Fetcher
	encoder Encoder
	emitter Emitter
}

func NewProcessor(fetcher Fetcher, emitter Emitter) (*Processor, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if emitter == nil {
		return nil, errors.New("emitter is required")
	}

	encoder, err := newEncoder()
	if err != nil {
		return nil, fmt.Errorf("build encoder: %w", err)
	}

	return &Processor{
		fetcher: fetcher,
		encoder: encoder,
		emitter: emitter,
	}, nil
}

func NewLocalProcessor(outputDir string) (*Processor, error) {
	return NewProcessor(LocalFileFetcher{}, LocalFileEmitter{OutputDir: outputDir})
}

// Process decodes src and emits its eight variants. The first failure ends
// this file; it is reported in the result rather than returned.
func (p *Processor) Process(ctx context.Context, src domain.SourceFile) FileResult {
	result := FileResult{Source: src}

	base, err := p.loadBase(ctx, src)
	if err != nil {
		result.Err = err
		return result
	}

	outFormat := format.EncoderFormatFor(src.Ext)
	for tag, variant := range Augmentations(base) {
		variant = EnforceJPEGSafety(variant, src.Ext)

		data, err := p.encoder.Encode(variant, outFormat)
		if err != nil {
			result.Err = fmt.Errorf("encode stage variant=%s: %w", tag, err)
			return result
		}

		relPath := filepath.Join(src.RelDir(), domain.VariantFileName(src.Stem, tag, src.Ext))
		written, err := p.emitter.Emit(ctx, relPath, data, outFormat)
		if err != nil {
			result.Err = fmt.Errorf("emit stage variant=%s: %w", tag, err)
			return result
		}
		written.Variant = tag
		result.Outputs = append(result.Outputs, written)
	}

	return result
}

func (p *Processor) loadBase(ctx context.Context, src domain.SourceFile) (image.Image, error) {
	rc, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch stage: %w", err)
	}
	defer rc.Close()

	img, err := imaging.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode source image: %w", err)
	}
	return NormalizeBase(img), nil
}

type LocalFileFetcher struct{}

func (LocalFileFetcher) Fetch(_ context.Context, src domain.SourceFile) (io.ReadCloser, error) {
	f, err := os.Open(src.AbsPath)
	if err != nil {
		return nil, fmt.Errorf("open input file %s: %w", src.AbsPath, err)
	}
	return f, nil
}

type LocalFileEmitter struct {
	OutputDir string
}

func (e LocalFileEmitter) Emit(_ context.Context, relPath string, data []byte, f domain.Format) (Output, error) {
	if strings.TrimSpace(e.OutputDir) == "" {
		return Output{}, errors.New("output directory is required")
	}

	fullPath := filepath.Join(e.OutputDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return Output{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return Output{}, fmt.Errorf("write output file: %w", err)
	}

	return Output{
		RelPath: relPath,
		Path:    fullPath,
		Format:  f,
		Bytes:   len(data),
	}, nil
}
