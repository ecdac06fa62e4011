package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coursedocs/course-assistant/internal/core/domain"
	"github.com/coursedocs/course-assistant/internal/core/usecase"
)

type assistantStub struct {
	question string
	topic    string
	answer   *domain.Answer
	err      error
}

func (s *assistantStub) Answer(_ context.Context, question, topic string) (*domain.Answer, error) {
	s.question = question
	s.topic = topic
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func newTestHandler(assistant *assistantStub) http.Handler {
	session := usecase.NewSession(assistant, nil, nil, "test")
	return NewRouter(session, []string{"All", "Finance", "Marketing"}, nil).Handler()
}

func TestAskReturnsAnswer(t *testing.T) {
	assistant := &assistantStub{answer: &domain.Answer{
		Text:    "Prices should track perceived customer value.",
		Outcome: domain.OutcomeAnswered,
		Sources: []domain.RetrievedChunk{{ID: "c1", Source: "pricing.pdf"}},
	}}
	handler := newTestHandler(assistant)

	body := strings.NewReader(`{"question":"what is value based pricing?","topic":"Finance"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if assistant.question != "what is value based pricing?" || assistant.topic != "Finance" {
		t.Fatalf("pipeline received question=%q topic=%q", assistant.question, assistant.topic)
	}

	var resp domain.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != assistant.answer.Text {
		t.Fatalf("unexpected answer text %q", resp.Text)
	}
	if resp.Outcome != domain.OutcomeAnswered {
		t.Fatalf("unexpected outcome %q", resp.Outcome)
	}
	if len(resp.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(resp.Sources))
	}
}

func TestAskDefaultsEmptyTopicToAll(t *testing.T) {
	assistant := &assistantStub{answer: &domain.Answer{Text: "ok", Outcome: domain.OutcomeAnswered}}
	handler := newTestHandler(assistant)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if assistant.topic != domain.TopicAll {
		t.Fatalf("topic = %q, want %q", assistant.topic, domain.TopicAll)
	}
}

func TestAskInvalidJSONIsBadRequest(t *testing.T) {
	handler := newTestHandler(&assistantStub{})

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAskBlankQuestionIsBadRequest(t *testing.T) {
	handler := newTestHandler(&assistantStub{})

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question":"   "}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAskBackendOutageIsServiceUnavailable(t *testing.T) {
	assistant := &assistantStub{
		err: domain.WrapError(domain.ErrRetrievalUnavailable, "search", errors.New("index down")),
	}
	handler := newTestHandler(assistant)

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] == "" {
		t.Fatalf("expected user-facing error message, got %v", resp)
	}
}

func TestAskMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&assistantStub{})

	req := httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestListTopics(t *testing.T) {
	handler := newTestHandler(&assistantStub{})

	req := httptest.NewRequest(http.MethodGet, "/v1/topics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Topics) != 3 || resp.Topics[0] != "All" {
		t.Fatalf("unexpected topics %v", resp.Topics)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(&assistantStub{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	handler := newTestHandler(&assistantStub{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header on response")
	}
}

func TestRequestIDIsPreservedWhenProvided(t *testing.T) {
	handler := newTestHandler(&assistantStub{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "caller-supplied-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "caller-supplied-id" {
		t.Fatalf("X-Request-Id = %q, want caller-supplied-id", got)
	}
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("x")), http.StatusBadRequest},
		{"retrieval", domain.WrapError(domain.ErrRetrievalUnavailable, "search", errors.New("x")), http.StatusServiceUnavailable},
		{"generation", domain.WrapError(domain.ErrGenerationUnavailable, "generate", errors.New("x")), http.StatusServiceUnavailable},
		{"temporary", domain.WrapError(domain.ErrTemporary, "call", errors.New("x")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
				t.Fatalf("mapErrorToHTTPStatus() = %d, want %d", got, tc.want)
			}
		})
	}
}
