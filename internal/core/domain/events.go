package domain

import "time"

// TurnEvent describes one completed conversation turn for the audit stream.
// Events are write-only operational data; they are never read back into
// retrieval or generation.
type TurnEvent struct {
	ID             string        `json:"id"`
	Question       string        `json:"question"`
	Topic          string        `json:"topic"`
	Outcome        AnswerOutcome `json:"outcome"`
	Passages       int           `json:"passages"`
	RerankDegraded bool          `json:"rerank_degraded"`
	DurationMS     int64         `json:"duration_ms"`
	CreatedAt      time.Time     `json:"created_at"`
}

// OutcomeError is used on the audit stream for turns that failed before an
// answer could be produced. It is not a valid Answer outcome.
const OutcomeError AnswerOutcome = "error"
