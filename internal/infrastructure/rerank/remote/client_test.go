package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/coursedocs/course-assistant/internal/core/domain"
)

func TestRerankSendsModelQueryAndPassages(t *testing.T) {
	var captured struct {
		Model    string   `json:"model"`
		Query    string   `json:"query"`
		Passages []string `json:"passages"`
		TopN     int      `json:"top_n"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rerank" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 1, "score": 0.9},
				{"index": 0, "score": 0.3},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "ms-marco-MiniLM-L-12-v2")

	out, err := client.Rerank(context.Background(), "pricing question", []string{"passage a", "passage b"}, 2)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if captured.Model != "ms-marco-MiniLM-L-12-v2" {
		t.Fatalf("unexpected model %q", captured.Model)
	}
	if captured.Query != "pricing question" {
		t.Fatalf("unexpected query %q", captured.Query)
	}
	if !reflect.DeepEqual(captured.Passages, []string{"passage a", "passage b"}) {
		t.Fatalf("unexpected passages %v", captured.Passages)
	}
	if captured.TopN != 2 {
		t.Fatalf("unexpected top_n %d", captured.TopN)
	}
	if !reflect.DeepEqual(out, []string{"passage b", "passage a"}) {
		t.Fatalf("expected score-ordered passages, got %v", out)
	}
}

func TestRerankTruncatesToTopN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "score": 0.9},
				{"index": 0, "score": 0.8},
				{"index": 1, "score": 0.1},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-model")

	out, err := client.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 2)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if !reflect.DeepEqual(out, []string{"c", "a"}) {
		t.Fatalf("expected top 2 by score, got %v", out)
	}
}

func TestRerankTiedScoresKeepCandidateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "score": 0.5},
				{"index": 0, "score": 0.5},
				{"index": 1, "score": 0.5},
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-model")

	out, err := client.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 3)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if !reflect.DeepEqual(out, []string{"a", "b", "c"}) {
		t.Fatalf("expected candidate order on ties, got %v", out)
	}
}

func TestRerankEmptyCandidatesSkipsBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Errorf("backend must not be called for empty candidates")
	}))
	defer server.Close()

	client := New(server.URL, "test-model")

	out, err := client.Rerank(context.Background(), "q", nil, 5)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}

func TestRerankBackendFailureIsRerankUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, "test-model")

	_, err := client.Rerank(context.Background(), "q", []string{"a"}, 1)
	if !domain.IsKind(err, domain.ErrRerankUnavailable) {
		t.Fatalf("expected ErrRerankUnavailable, got %v", err)
	}
}

func TestRerankRejectsOutOfRangeIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"index": 7, "score": 0.9}},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-model")

	_, err := client.Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	if !domain.IsKind(err, domain.ErrRerankUnavailable) {
		t.Fatalf("expected ErrRerankUnavailable for bad index, got %v", err)
	}
}
