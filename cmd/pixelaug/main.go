package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dunamismax/pixelaug/internal/config"
	"github.com/dunamismax/pixelaug/internal/domain"
	"github.com/dunamismax/pixelaug/internal/id"
	"github.com/dunamismax/pixelaug/internal/pipeline"
	"github.com/dunamismax/pixelaug/internal/storage"
	"github.com/dunamismax/pixelaug/internal/telemetry"
	"github.com/dunamismax/pixelaug/internal/walker"
	"github.com/dunamismax/pixelaug/internal/webhook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Default()
	code := exitOK
	var noCopyOriginals bool

	cmd := &cobra.Command{
		Use:           "pixelaug",
		Short:         "Write eight deterministic augmentations of every image in a folder tree",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noCopyOriginals {
				cfg.CopyOriginals = false
			}
			if err := cfg.Resolve(); err != nil {
				return err
			}
			code = execute(cmd.Context(), cfg, stdout, stderr)
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	bindFlags(cmd.Flags(), &cfg)
	cmd.Flags().BoolVar(&noCopyOriginals, "no-copy-originals", false, "do not copy source images into the output tree")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
	return code
}

func bindFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVarP(&cfg.Input, "input", "i", cfg.Input, "root folder of images to augment")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output root (default <input>_out next to the input)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every processed file")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics to this textfile when the run ends")

	fs.StringVar(&cfg.Trace.Exporter, "trace-exporter", cfg.Trace.Exporter, "trace exporter: none, stdout or otlp")
	fs.StringVar(&cfg.Trace.OTLPEndpoint, "otlp-endpoint", cfg.Trace.OTLPEndpoint, "OTLP/HTTP collector host:port")
	fs.BoolVar(&cfg.Trace.OTLPInsecure, "otlp-insecure", cfg.Trace.OTLPInsecure, "send OTLP traces without TLS")

	fs.StringVar(&cfg.Mirror.Endpoint, "mirror-endpoint", cfg.Mirror.Endpoint, "S3-compatible endpoint for mirrored outputs")
	fs.StringVar(&cfg.Mirror.Bucket, "mirror-bucket", cfg.Mirror.Bucket, "mirror outputs into this bucket")
	fs.StringVar(&cfg.Mirror.AccessKey, "mirror-access-key", cfg.Mirror.AccessKey, "mirror access key")
	fs.StringVar(&cfg.Mirror.SecretKey, "mirror-secret-key", cfg.Mirror.SecretKey, "mirror secret key")
	fs.StringVar(&cfg.Mirror.Prefix, "mirror-prefix", cfg.Mirror.Prefix, "object key prefix for mirrored outputs")
	fs.BoolVar(&cfg.Mirror.UseSSL, "mirror-use-ssl", cfg.Mirror.UseSSL, "use TLS for the mirror endpoint")

	fs.StringVar(&cfg.Webhook.URL, "webhook-url", cfg.Webhook.URL, "POST the run summary to this URL")
	fs.StringVar(&cfg.Webhook.SigningSecret, "webhook-secret", cfg.Webhook.SigningSecret, "HMAC-SHA256 signing secret for the webhook")
	fs.IntVar(&cfg.Webhook.MaxAttempts, "webhook-attempts", cfg.Webhook.MaxAttempts, "webhook delivery attempts")
	fs.DurationVar(&cfg.Webhook.Timeout, "webhook-timeout", cfg.Webhook.Timeout, "webhook request timeout")
}

func execute(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) int {
	logger := newLogger(stderr, cfg.Verbose)

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		logger.WithFields(logrus.Fields{"path": cfg.Output, "error": err}).Error("cannot create output root")
		return exitFailure
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  "pixelaug",
		Exporter:     cfg.Trace.Exporter,
		OTLPEndpoint: cfg.Trace.OTLPEndpoint,
		OTLPInsecure: cfg.Trace.OTLPInsecure,
		Writer:       stderr,
	}, logger)
	if err != nil {
		logger.WithField("error", err).Error("tracing setup failed")
		return exitFailure
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.WithField("error", err).Warn("tracing shutdown failed")
		}
	}()

	if err := pipeline.Startup(); err != nil {
		logger.WithField("error", err).Error("image runtime startup failed")
		return exitFailure
	}
	defer pipeline.Shutdown()

	mirror, err := setupMirror(ctx, logger, cfg.Mirror)
	if err != nil {
		logger.WithFields(logrus.Fields{"bucket": cfg.Mirror.Bucket, "error": err}).Error("mirror setup failed")
		return exitFailure
	}

	w, err := walker.New(logger, walker.Options{
		RunID:         id.New(),
		InputRoot:     cfg.Input,
		OutputRoot:    cfg.Output,
		CopyOriginals: cfg.CopyOriginals,
		Mirror:        mirror,
	})
	if err != nil {
		logger.WithField("error", err).Error("walker setup failed")
		return exitFailure
	}

	summary, runErr := w.Run(ctx)

	if cfg.MetricsFile != "" {
		if err := w.WriteMetrics(cfg.MetricsFile); err != nil {
			logger.WithFields(logrus.Fields{"path": cfg.MetricsFile, "error": err}).Warn("metrics not written")
		}
	}
	notify(ctx, logger, cfg.Webhook, summary)

	if runErr != nil {
		if !errors.Is(runErr, walker.ErrNoImages) {
			logger.WithField("error", runErr).Error("run failed")
		}
		return exitFailure
	}

	fmt.Fprintf(stdout, "[COMPLETED] Dataset output to: %s\n", summary.OutputRoot)
	fmt.Fprintf(stdout, "[DATA] Originals copied: %d | Augmented files written: %d\n", summary.OriginalsCopied, summary.Augmented)
	return exitOK
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// setupMirror returns nil when no mirror bucket is configured.
func setupMirror(ctx context.Context, logger logrus.FieldLogger, cfg config.MirrorConfig) (pipeline.Emitter, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := storage.NewClient(storage.Config{
		Endpoint: cfg.Endpoint,
		Access:   cfg.AccessKey,
		Secret:   cfg.SecretKey,
		Bucket:   cfg.Bucket,
		UseSSL:   cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"endpoint": cfg.Endpoint,
		"bucket":   client.Bucket(),
		"prefix":   cfg.Prefix,
	}).Debug("mirroring outputs")
	return pipeline.ObjectStoreEmitter{Storage: client, OutputPrefix: cfg.Prefix}, nil
}

func notify(ctx context.Context, logger logrus.FieldLogger, cfg config.WebhookConfig, summary domain.Summary) {
	if !cfg.Enabled() {
		return
	}

	client := webhook.NewClient(webhook.Config{
		SigningSecret: cfg.SigningSecret,
		Timeout:       cfg.Timeout,
		MaxAttempts:   cfg.MaxAttempts,
	})
	if err := client.NotifyRun(ctx, cfg.URL, summary); err != nil {
		logger.WithFields(logrus.Fields{"url": cfg.URL, "error": err}).Warn("webhook delivery failed")
	}
}
