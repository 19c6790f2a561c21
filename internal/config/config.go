package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrInputNotFound = errors.New("input folder not found")

type Config struct {
	Input         string
	Output        string
	CopyOriginals bool
	Verbose       bool
	MetricsFile   string
	Trace         TraceConfig
	Mirror        MirrorConfig
	Webhook       WebhookConfig
}

type TraceConfig struct {
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool
}

type MirrorConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

func (m MirrorConfig) Enabled() bool {
	return strings.TrimSpace(m.Bucket) != ""
}

type WebhookConfig struct {
	URL           string
	SigningSecret string
	MaxAttempts   int
	Timeout       time.Duration
}

func (w WebhookConfig) Enabled() bool {
	return strings.TrimSpace(w.URL) != ""
}

func Default() Config {
	return Config{
		Input:         ".",
		CopyOriginals: true,
		Trace: TraceConfig{
			Exporter: "none",
		},
		Mirror: MirrorConfig{
			Endpoint: "localhost:9000",
			Prefix:   "augmented",
		},
		Webhook: WebhookConfig{
			MaxAttempts: 1,
			Timeout:     10 * time.Second,
		},
	}
}

// Resolve makes Input and Output absolute, checks that Input exists and fills
// in the default output root. A missing input wraps ErrInputNotFound.
func (c *Config) Resolve() error {
	input, err := expandPath(c.Input)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}
	c.Input = input

	if strings.TrimSpace(c.Output) == "" {
		c.Output = DefaultOutput(input)
	} else {
		output, err := expandPath(c.Output)
		if err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		c.Output = output
	}

	if c.Mirror.Enabled() && strings.TrimSpace(c.Mirror.Endpoint) == "" {
		return errors.New("mirror endpoint is required when a mirror bucket is set")
	}
	if c.Webhook.MaxAttempts < 1 {
		c.Webhook.MaxAttempts = 1
	}
	return nil
}

// DefaultOutput is the sibling directory "<input>_out".
func DefaultOutput(input string) string {
	input = filepath.Clean(input)
	return filepath.Join(filepath.Dir(input), filepath.Base(input)+"_out")
}

func expandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		p = "."
	}
	if p == "~" || strings.HasPrefix(p, "~"+string(filepath.Separator)) || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, p[1:])
	}
	return filepath.Abs(p)
}
