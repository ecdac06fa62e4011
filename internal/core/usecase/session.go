package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coursedocs/course-assistant/internal/core/domain"
	"github.com/coursedocs/course-assistant/internal/core/ports"
	"github.com/coursedocs/course-assistant/internal/observability/metrics"
)

// Session handles one conversation turn at a time: it owns no transcript
// state itself, the caller passes the transcript in and receives the
// updated copy back.
type Session struct {
	assistant ports.AssistantService
	events    ports.EventPublisher
	metrics   *metrics.PipelineMetrics
	service   string
}

func NewSession(
	assistant ports.AssistantService,
	events ports.EventPublisher,
	pipelineMetrics *metrics.PipelineMetrics,
	service string,
) *Session {
	if events == nil {
		events = NopEventPublisher{}
	}
	return &Session{
		assistant: assistant,
		events:    events,
		metrics:   pipelineMetrics,
		service:   service,
	}
}

// RunTurn appends the user question to the transcript, runs the pipeline,
// and appends the assistant answer on success. On failure the question
// stays in the transcript, no assistant entry is appended, and the typed
// error is returned; prior entries are never modified.
func (s *Session) RunTurn(
	ctx context.Context,
	transcript domain.Transcript,
	question string,
	topic string,
) (domain.Transcript, *domain.Answer, error) {
	start := time.Now()
	transcript = transcript.Append(domain.Turn{Role: domain.RoleUser, Content: question})

	answer, err := s.assistant.Answer(ctx, question, topic)
	duration := time.Since(start)

	if err != nil {
		s.observe(ctx, question, topic, domain.OutcomeError, 0, false, duration)
		return transcript, nil, err
	}

	transcript = transcript.Append(domain.Turn{Role: domain.RoleAssistant, Content: answer.Text})
	s.observe(ctx, question, topic, answer.Outcome, len(answer.Sources), answer.RerankDegraded, duration)
	return transcript, answer, nil
}

func (s *Session) observe(
	ctx context.Context,
	question string,
	topic string,
	outcome domain.AnswerOutcome,
	passages int,
	degraded bool,
	duration time.Duration,
) {
	if s.metrics != nil {
		s.metrics.ObserveTurn(s.service, string(outcome), passages, degraded, duration)
	}

	event := domain.TurnEvent{
		ID:             uuid.NewString(),
		Question:       question,
		Topic:          topic,
		Outcome:        outcome,
		Passages:       passages,
		RerankDegraded: degraded,
		DurationMS:     duration.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}
	// Audit publishing is best effort; a broken event bus must not fail
	// the turn.
	if err := s.events.PublishTurnCompleted(ctx, event); err != nil {
		slog.Warn("turn_event_publish_failed", "error", err, "turn_id", event.ID)
	}
}

// UserFacingMessage converts pipeline failures to text suitable for the
// conversational surface.
func UserFacingMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "Please enter a question."
	case domain.IsKind(err, domain.ErrRetrievalUnavailable):
		return "The document search is currently unavailable. Please try again in a moment."
	case domain.IsKind(err, domain.ErrGenerationUnavailable):
		return "I could not compose an answer right now. Please try again in a moment."
	default:
		return "Something went wrong while handling that question. Please try again."
	}
}

// NopEventPublisher drops turn events; used when the audit stream is
// disabled.
type NopEventPublisher struct{}

func (NopEventPublisher) PublishTurnCompleted(context.Context, domain.TurnEvent) error {
	return nil
}
