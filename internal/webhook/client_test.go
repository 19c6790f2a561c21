package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dunamismax/pixelaug/internal/domain"
)

func TestNotifyRunSignsSummary(t *testing.T) {
	var (
		gotSig  string
		gotTS   string
		gotEvt  string
		gotBody []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(HeaderSignature)
		gotTS = r.Header.Get(HeaderTimestamp)
		gotEvt = r.Header.Get(HeaderEvent)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{
		SigningSecret: "test-secret",
		Timeout:       2 * time.Second,
		MaxAttempts:   1,
	})

	summary := domain.Summary{RunID: "run-1", Discovered: 3, OriginalsCopied: 3, Augmented: 24}
	if err := client.NotifyRun(context.Background(), srv.URL, summary); err != nil {
		t.Fatalf("notify returned error: %v", err)
	}

	if gotEvt != EventRunCompleted {
		t.Fatalf("expected event header %s, got %q", EventRunCompleted, gotEvt)
	}
	if gotTS == "" {
		t.Fatal("expected timestamp header")
	}
	if gotSig != Sign("test-secret", gotTS, gotBody) {
		t.Fatalf("signature mismatch: %s", gotSig)
	}

	var decoded domain.Summary
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.Augmented != 24 || decoded.OriginalsCopied != 3 {
		t.Fatalf("unexpected summary in body: %+v", decoded)
	}
}

func TestNotifyRunEmptyEvent(t *testing.T) {
	var gotEvt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvt = r.Header.Get(HeaderEvent)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := NewClient(Config{}).NotifyRun(context.Background(), srv.URL, domain.Summary{}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if gotEvt != EventRunEmpty {
		t.Fatalf("expected %s, got %q", EventRunEmpty, gotEvt)
	}
}

func TestNotifyRunSingleAttemptByDefault(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(Config{}).NotifyRun(context.Background(), srv.URL, domain.Summary{Discovered: 1})
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestNotifyRunRetriesWhenConfigured(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{MaxAttempts: 3})
	client.retryDelay = time.Millisecond
	if err := client.NotifyRun(context.Background(), srv.URL, domain.Summary{Discovered: 1}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestNotifyRunSkipsEmptyEndpoint(t *testing.T) {
	if err := NewClient(Config{}).NotifyRun(context.Background(), "  ", domain.Summary{}); err != nil {
		t.Fatalf("expected empty endpoint to be a no-op, got %v", err)
	}
}
