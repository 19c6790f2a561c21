package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dunamismax/pixelaug/internal/domain"
	"github.com/dunamismax/pixelaug/internal/format"
	"github.com/dunamismax/pixelaug/internal/fsx"
	"github.com/dunamismax/pixelaug/internal/pipeline"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrNoImages = errors.New("no images found")

type Options struct {
	RunID         string
	InputRoot     string
	OutputRoot    string
	CopyOriginals bool
	// Mirror, when set, receives a copy of every file written to OutputRoot.
	Mirror pipeline.Emitter
}

type Walker struct {
	logger    logrus.FieldLogger
	opts      Options
	processor *pipeline.Processor
	metrics   *metrics
	tracer    trace.Tracer
	copyFile  func(src, dst string) error
	now       func() time.Time
}

// fileReport is what one source file contributed to the run.
type fileReport struct {
	OriginalCopied bool
	Augmented      int
	CopyErr        error
	Err            error
}

func New(logger logrus.FieldLogger, opts Options) (*Walker, error) {
	if strings.TrimSpace(opts.InputRoot) == "" {
		return nil, errors.New("input root is required")
	}
	if strings.TrimSpace(opts.OutputRoot) == "" {
		return nil, errors.New("output root is required")
	}
	opts.InputRoot = filepath.Clean(opts.InputRoot)
	opts.OutputRoot = filepath.Clean(opts.OutputRoot)

	w := &Walker{
		logger:   logger,
		opts:     opts,
		metrics:  newMetrics(),
		tracer:   otel.Tracer("pixelaug/walker"),
		copyFile: fsx.CopyFile,
		now:      time.Now,
	}

	var (
		processor *pipeline.Processor
		err       error
	)
	if opts.Mirror == nil {
		processor, err = pipeline.NewLocalProcessor(opts.OutputRoot)
	} else {
		processor, err = pipeline.NewProcessor(pipeline.LocalFileFetcher{}, pipeline.MirroringEmitter{
			Primary:       pipeline.LocalFileEmitter{OutputDir: opts.OutputRoot},
			Mirror:        opts.Mirror,
			OnMirrorError: w.recordMirrorFailure,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("initialize pipeline processor: %w", err)
	}
	w.processor = processor
	return w, nil
}

// Discover lists every processable image under the input root in lexical
// walk order. An output root nested inside the input root is not descended.
func (w *Walker) Discover() ([]domain.SourceFile, error) {
	root := w.opts.InputRoot
	skipOutput := w.opts.OutputRoot != root && fsx.IsUnder(w.opts.OutputRoot, root)

	files := make([]domain.SourceFile, 0, 64)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			w.logger.WithFields(logrus.Fields{"path": path, "error": walkErr}).Error("cannot read directory, skipping")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if skipOutput && path == w.opts.OutputRoot {
				return filepath.SkipDir
			}
			return nil
		}

		if !format.IsProcessable(path) {
			return nil
		}

		src, err := domain.NewSourceFile(root, path)
		if err != nil {
			return err
		}
		files = append(files, src)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Run discovers and processes every image. Per-file failures are logged and
// counted but never returned; the only errors are a failed walk of the input
// root and ErrNoImages.
func (w *Walker) Run(ctx context.Context) (domain.Summary, error) {
	ctx, span := w.tracer.Start(ctx, "walker.run")
	span.SetAttributes(
		attribute.String("run.id", w.opts.RunID),
		attribute.String("run.input_root", w.opts.InputRoot),
		attribute.String("run.output_root", w.opts.OutputRoot),
		attribute.Bool("run.copy_originals", w.opts.CopyOriginals),
	)
	defer span.End()

	summary := domain.Summary{
		RunID:      w.opts.RunID,
		InputRoot:  w.opts.InputRoot,
		OutputRoot: w.opts.OutputRoot,
		StartedAt:  w.now().UTC(),
	}

	files, err := w.Discover()
	if err != nil {
		summary.FinishedAt = w.now().UTC()
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		return summary, fmt.Errorf("discover images: %w", err)
	}
	summary.Discovered = len(files)
	w.metrics.discoveredImagesTotal.Add(float64(len(files)))

	if len(files) == 0 {
		w.logger.WithFields(logrus.Fields{
			"input":      w.opts.InputRoot,
			"extensions": strings.Join(format.Extensions(), " "),
		}).Error("no images found")
		summary.FinishedAt = w.now().UTC()
		span.SetStatus(codes.Error, "no images")
		return summary, ErrNoImages
	}

	for _, src := range files {
		report := w.processFile(ctx, src)
		if report.OriginalCopied {
			summary.OriginalsCopied++
		}
		summary.Augmented += report.Augmented
		if report.Err != nil {
			summary.FailedFiles++
		}
	}

	summary.FinishedAt = w.now().UTC()
	span.SetAttributes(
		attribute.Int("run.originals_copied", summary.OriginalsCopied),
		attribute.Int("run.augmented", summary.Augmented),
		attribute.Int("run.failed_files", summary.FailedFiles),
	)
	span.SetStatus(codes.Ok, "completed")
	return summary, nil
}

// WriteMetrics writes the run's counters to path in Prometheus text format.
func (w *Walker) WriteMetrics(path string) error {
	if err := w.metrics.writeTextfile(path); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func (w *Walker) processFile(ctx context.Context, src domain.SourceFile) fileReport {
	startedAt := w.now()
	outcome := domain.FileOutcomeFailed

	ctx, span := w.tracer.Start(ctx, "walker.process_file")
	span.SetAttributes(attribute.String("file.rel_path", src.RelPath))
	defer span.End()
	defer func() {
		w.metrics.fileDuration.Observe(time.Since(startedAt).Seconds())
		w.metrics.filesTotal.WithLabelValues(outcome).Inc()
	}()

	var report fileReport
	log := w.logger.WithField("path", src.AbsPath)

	destDir := filepath.Join(w.opts.OutputRoot, src.RelDir())
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		report.Err = fmt.Errorf("create destination dir: %w", err)
		log.WithField("error", report.Err).Error("skipping image")
		span.RecordError(report.Err)
		span.SetStatus(codes.Error, "mkdir failed")
		return report
	}

	if w.opts.CopyOriginals {
		if err := w.copyOriginal(ctx, src, destDir); err != nil {
			report.CopyErr = err
			w.metrics.copyFailuresTotal.Inc()
			log.WithField("error", err).Error("copy failed")
			span.RecordError(err)
		} else {
			report.OriginalCopied = true
			w.metrics.originalsCopiedTotal.Inc()
		}
	}

	result := w.processor.Process(ctx, src)
	report.Augmented = len(result.Outputs)
	for _, out := range result.Outputs {
		w.metrics.augmentedOutputsTotal.WithLabelValues(out.Variant).Inc()
		w.metrics.encodedBytes.Observe(float64(out.Bytes))
	}
	span.SetAttributes(attribute.Int("file.augmented", report.Augmented))

	if result.Err != nil {
		report.Err = result.Err
		log.WithField("error", result.Err).Error("skipping image")
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "augmentation failed")
		return report
	}

	log.WithField("augmented", report.Augmented).Debug("processed image")
	outcome = domain.FileOutcomeSucceeded
	span.SetStatus(codes.Ok, "processed")
	return report
}

func (w *Walker) copyOriginal(ctx context.Context, src domain.SourceFile, destDir string) error {
	dst := filepath.Join(destDir, src.Name)
	if err := w.copyFile(src.AbsPath, dst); err != nil {
		return err
	}
	if w.opts.Mirror == nil {
		return nil
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		w.recordMirrorFailure(src.RelPath, err)
		return nil
	}
	if _, err := w.opts.Mirror.Emit(ctx, src.RelPath, data, format.EncoderFormatFor(src.Ext)); err != nil {
		w.recordMirrorFailure(src.RelPath, err)
	}
	return nil
}

func (w *Walker) recordMirrorFailure(relPath string, err error) {
	w.metrics.mirrorFailuresTotal.Inc()
	w.logger.WithFields(logrus.Fields{"path": relPath, "error": err}).Warn("mirror upload failed")
}
