package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbedderBatches(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("unexpected model %q", req.Model)
		}
		resp := ollamaEmbedResponse{}
		for i := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i + 1), 0, 1})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 3, srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"salmon", "gold", "wine"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one request for the batch, got %d", calls)
	}
	if len(vecs) != 3 || vecs[2][0] != 3 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
	if e.Name() != "ollama/nomic-embed-text" || e.Dimensions() != 3 {
		t.Errorf("unexpected identity %s/%d", e.Name(), e.Dimensions())
	}
}

func TestOllamaEmbedderCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer srv.Close()

	_, err := NewOllamaEmbedder("m", 1, srv.URL).Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error when fewer embeddings than inputs are returned")
	}
}

func TestOllamaEmbedderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := EmbedOne(context.Background(), NewOllamaEmbedder("m", 1, srv.URL), "a")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestOllamaEmbedderEmptyInput(t *testing.T) {
	vecs, err := NewOllamaEmbedder("m", 1, "http://127.0.0.1:1").Embed(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("expected no request for empty input, got %v %v", vecs, err)
	}
}

func TestNewEmbedder(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_HOST", "")

	e, err := NewEmbedder("ollama", Options{})
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if e.Name() != "ollama/nomic-embed-text" || e.Dimensions() != 768 {
		t.Errorf("unexpected defaults %s/%d", e.Name(), e.Dimensions())
	}

	if _, err := NewEmbedder("openai", Options{}); err == nil {
		t.Error("expected error for openai without API key")
	}

	e, err = NewEmbedder("openai", Options{APIKey: "sk-test", Model: string(ModelTextEmbedding3Large)})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if e.Dimensions() != 3072 {
		t.Errorf("expected 3072 dimensions, got %d", e.Dimensions())
	}

	if _, err := NewEmbedder("cohere", Options{}); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestHashEmbedderSharedWordsOnly(t *testing.T) {
	e := NewHashEmbedder(0)
	vecs, err := e.Embed(context.Background(), []string{"salmon price", "Salmon: $12/kg", "Gold bar: $50000/oz", ""})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	dot := func(a, b []float32) float32 {
		var s float32
		for i := range a {
			s += a[i] * b[i]
		}
		return s
	}
	if dot(vecs[0], vecs[1]) <= 0 {
		t.Error("expected texts sharing 'salmon' to be similar")
	}
	if dot(vecs[0], vecs[2]) != 0 {
		t.Error("expected texts sharing no words to be orthogonal")
	}
	if dot(vecs[3], vecs[3]) < 0.99 {
		t.Error("expected a unit vector for token-free text")
	}
	if e.Dimensions() != 512 {
		t.Errorf("expected default 512 dimensions, got %d", e.Dimensions())
	}
}
