package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestEmbedder(url string) *OllamaEmbedder {
	return NewOllamaEmbedder(EmbedderConfig{
		APIBase: url,
		Model:   "nomic-embed-text",
		Client:  &http.Client{Timeout: 5 * time.Second},
		Logger:  slog.Default(),
	})
}

func TestEmbed_Success(t *testing.T) {
	var gotReq embedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	v, err := newTestEmbedder(srv.URL).Embed(context.Background(), "Шабли — белое вино")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != 3 {
		t.Fatalf("expected 3-dim vector, got %d", len(v))
	}
	if gotReq.Model != "nomic-embed-text" || gotReq.Prompt != "Шабли — белое вино" {
		t.Fatalf("unexpected request body: %+v", gotReq)
	}
}

func TestEmbed_EmptyVectorRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	}))
	defer srv.Close()

	if _, err := newTestEmbedder(srv.URL).Embed(context.Background(), "текст"); err == nil {
		t.Fatal("empty embedding must be an error")
	}
}

func TestEmbed_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newTestEmbedder(srv.URL).Embed(context.Background(), "текст"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestEmbedBatch_Order(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		json.NewDecoder(r.Body).Decode(&req)
		// Vector encodes the prompt length so order is observable.
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{float32(len(req.Prompt))}})
	}))
	defer srv.Close()

	texts := []string{"а", "вино", "винодельня"}
	vectors, err := newTestEmbedder(srv.URL).EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for i, text := range texts {
		if vectors[i][0] != float32(len(text)) {
			t.Fatalf("vector %d out of order: %v", i, vectors[i])
		}
	}
}

func TestEmbedBatch_FailsFast(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{1}})
	}))
	defer srv.Close()

	_, err := newTestEmbedder(srv.URL).EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err == nil {
		t.Fatal("expected batch to fail on the failing text")
	}
	if calls != 2 {
		t.Fatalf("batch must stop at the first failure, got %d calls", calls)
	}
}
