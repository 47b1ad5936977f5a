package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestOllama(url string) *Ollama {
	return NewOllama(OllamaConfig{
		APIBase: url,
		Model:   "mistral",
		Client:  &http.Client{Timeout: 5 * time.Second},
		Logger:  slog.Default(),
	})
}

func TestGenerate_Success(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "Советую шабли.", Done: true})
	}))
	defer srv.Close()

	got, err := newTestOllama(srv.URL).Generate(context.Background(), "посоветуй белое")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Советую шабли." {
		t.Fatalf("unexpected reply: %q", got)
	}
	if gotReq.Model != "mistral" || gotReq.Stream {
		t.Fatalf("unexpected request body: %+v", gotReq)
	}
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "model loading", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "ок", Done: true})
	}))
	defer srv.Close()

	got, err := newTestOllama(srv.URL).Generate(context.Background(), "привет")
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if got != "ок" {
		t.Fatalf("unexpected reply: %q", got)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestGenerate_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestOllama(srv.URL).Generate(context.Background(), "привет")
	if err == nil {
		t.Fatal("expected error on 404")
	}
	if calls != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls)
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body: the server only observes the client going away
		// once the request body has been consumed.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestOllama(srv.URL).Generate(ctx, "привет")
	if err == nil {
		t.Fatal("expected error after context timeout")
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	o := newTestOllama(srv.URL)
	if err := o.Healthy(context.Background()); err != nil {
		t.Fatalf("Healthy: %v", err)
	}

	srv.Close()
	if err := o.Healthy(context.Background()); err == nil {
		t.Fatal("expected error against a dead backend")
	}
	if !strings.Contains(o.Name(), "ollama") {
		t.Fatalf("unexpected provider name %q", o.Name())
	}
}
