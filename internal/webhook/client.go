package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dunamismax/pixelaug/internal/domain"
)

const (
	HeaderSignature = "X-Pixelaug-Signature"
	HeaderTimestamp = "X-Pixelaug-Timestamp"
	HeaderEvent     = "X-Pixelaug-Event"

	EventRunCompleted = "run.completed"
	EventRunEmpty     = "run.empty"
)

type Config struct {
	SigningSecret string
	Timeout       time.Duration
	// MaxAttempts is the number of deliveries tried; below 1 means 1.
	MaxAttempts int
}

type Client struct {
	httpClient    *http.Client
	signingSecret string
	maxAttempts   int
	retryDelay    time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		signingSecret: cfg.SigningSecret,
		maxAttempts:   max(cfg.MaxAttempts, 1),
		retryDelay:    time.Second,
	}
}

// NotifyRun posts the signed run summary to endpoint. Runs that found no
// images are sent as run.empty, everything else as run.completed. A blank
// endpoint is a no-op.
func (c *Client) NotifyRun(ctx context.Context, endpoint string, summary domain.Summary) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil
	}

	event := EventRunCompleted
	if summary.Discovered == 0 {
		event = EventRunEmpty
	}

	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	timestamp := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	signature := Sign(c.signingSecret, timestamp, body)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		if lastErr = c.post(ctx, endpoint, event, timestamp, signature, body); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("webhook delivery failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, endpoint, event, timestamp, signature string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderSignature, signature)
	req.Header.Set(HeaderEvent, event)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status=%d", resp.StatusCode)
	}
	return nil
}

// Sign returns "sha256=" + hex(HMAC-SHA256(secret, timestamp + "." + body)).
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
