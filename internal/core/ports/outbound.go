package ports

import (
	"context"

	"github.com/coursedocs/course-assistant/internal/core/domain"
)

// Embedder maps query text to a fixed-dimension vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex performs top-k similarity search over the pre-built
// document index with an optional metadata filter.
type VectorIndex interface {
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error)
}

// Reranker orders candidate passages by relevance to the query and keeps
// the best topN. Output length is min(topN, len(candidates)); empty input
// yields empty output without error. Ties keep the candidates' order.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []string, topN int) ([]string, error)
}

// AnswerGenerator produces the grounded answer for a question given the
// assembled context string.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
}

// EventPublisher emits completed-turn events to the audit stream.
type EventPublisher interface {
	PublishTurnCompleted(ctx context.Context, event domain.TurnEvent) error
}

// TurnLogStore persists completed-turn events.
type TurnLogStore interface {
	RecordTurn(ctx context.Context, event domain.TurnEvent) error
}
