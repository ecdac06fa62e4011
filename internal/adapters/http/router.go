package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coursedocs/course-assistant/internal/core/domain"
	"github.com/coursedocs/course-assistant/internal/core/usecase"
	"github.com/coursedocs/course-assistant/internal/observability/metrics"
)

type Router struct {
	session *usecase.Session
	topics  []string
	metrics *metrics.PipelineMetrics
}

func NewRouter(session *usecase.Session, topics []string, pipelineMetrics *metrics.PipelineMetrics) *Router {
	return &Router{
		session: session,
		topics:  topics,
		metrics: pipelineMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/topics", rt.listTopics)
	mux.HandleFunc("/v1/ask", rt.ask)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": rt.topics})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Topic    string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	if req.Topic == "" {
		req.Topic = domain.TopicAll
	}

	// The HTTP surface is turn-per-request: no transcript is carried
	// across calls.
	_, answer, err := rt.session.RunTurn(r.Context(), nil, req.Question, req.Topic)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{
			"error": usecase.UserFacingMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
