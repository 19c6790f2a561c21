package pipeline

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/dunamismax/pixelaug/internal/domain"
)

type objectWriter interface {
	WriteObject(ctx context.Context, objectKey string, data []byte, contentType string) error
}

// ObjectStoreEmitter uploads outputs under OutputPrefix, keyed by their path
// relative to the output root.
type ObjectStoreEmitter struct {
	Storage      objectWriter
	OutputPrefix string
}

func (e ObjectStoreEmitter) Emit(ctx context.Context, relPath string, data []byte, f domain.Format) (Output, error) {
	if e.Storage == nil {
		return Output{}, errors.New("storage client is required")
	}

	objectKey := ObjectKey(e.OutputPrefix, relPath)
	if err := e.Storage.WriteObject(ctx, objectKey, data, f.ContentType()); err != nil {
		return Output{}, err
	}

	return Output{
		RelPath: relPath,
		Path:    objectKey,
		Format:  f,
		Bytes:   len(data),
	}, nil
}

// MirroringEmitter writes through Primary and copies each successful write to
// Mirror. Mirror failures go to OnMirrorError and never fail the write.
type MirroringEmitter struct {
	Primary       Emitter
	Mirror        Emitter
	OnMirrorError func(relPath string, err error)
}

func (e MirroringEmitter) Emit(ctx context.Context, relPath string, data []byte, f domain.Format) (Output, error) {
	out, err := e.Primary.Emit(ctx, relPath, data, f)
	if err != nil || e.Mirror == nil {
		return out, err
	}

	if _, mirrorErr := e.Mirror.Emit(ctx, relPath, data, f); mirrorErr != nil && e.OnMirrorError != nil {
		e.OnMirrorError(relPath, mirrorErr)
	}
	return out, nil
}

func ObjectKey(prefix, relPath string) string {
	return path.Join(defaultOutputPrefix(prefix), filepath.ToSlash(relPath))
}

func defaultOutputPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "augmented"
	}
	return prefix
}
