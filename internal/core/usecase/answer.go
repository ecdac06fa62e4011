package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coursedocs/course-assistant/internal/core/domain"
	"github.com/coursedocs/course-assistant/internal/core/ports"
)

const (
	defaultRetrievalLimit = 25
	defaultRerankTopN     = 5

	// contextSeparator keeps passages visually distinct for the
	// generation model.
	contextSeparator = "\n\n---\n\n"
)

type AnswerUseCase struct {
	embedder  ports.Embedder
	index     ports.VectorIndex
	reranker  ports.Reranker
	generator ports.AnswerGenerator

	retrievalLimit int
	rerankTopN     int
}

func NewAnswerUseCase(
	embedder ports.Embedder,
	index ports.VectorIndex,
	reranker ports.Reranker,
	generator ports.AnswerGenerator,
) *AnswerUseCase {
	return NewAnswerUseCaseWithLimits(embedder, index, reranker, generator, 0, 0)
}

func NewAnswerUseCaseWithLimits(
	embedder ports.Embedder,
	index ports.VectorIndex,
	reranker ports.Reranker,
	generator ports.AnswerGenerator,
	retrievalLimit int,
	rerankTopN int,
) *AnswerUseCase {
	if retrievalLimit <= 0 {
		retrievalLimit = defaultRetrievalLimit
	}
	if rerankTopN <= 0 {
		rerankTopN = defaultRerankTopN
	}
	return &AnswerUseCase{
		embedder:       embedder,
		index:          index,
		reranker:       reranker,
		generator:      generator,
		retrievalLimit: retrievalLimit,
		rerankTopN:     rerankTopN,
	}
}

// Answer runs one question through retrieve -> rerank -> generate.
// Context for generation is assembled only from this call's reranked
// passages; no conversation state leaks into retrieval.
func (uc *AnswerUseCase) Answer(ctx context.Context, question, topic string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", fmt.Errorf("question is required"))
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "embed question", err)
	}

	var filter domain.SearchFilter
	if topic != "" && topic != domain.TopicAll {
		filter.Topic = topic
	}

	chunks, err := uc.index.Search(ctx, queryVector, uc.retrievalLimit, filter)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "search index", err)
	}

	// Empty retrieval is a terminal branch, not an error.
	if len(chunks) == 0 {
		return &domain.Answer{
			Text:    domain.NoResultsMessage,
			Outcome: domain.OutcomeNoResults,
		}, nil
	}

	candidates := make([]string, len(chunks))
	for i, chunk := range chunks {
		candidates[i] = chunk.Text
	}

	degraded := false
	passages, err := uc.reranker.Rerank(ctx, question, candidates, uc.rerankTopN)
	if err != nil {
		// Availability over precision: fall back to raw retrieval
		// order truncated to topN and keep answering.
		degraded = true
		topN := uc.rerankTopN
		if topN > len(candidates) {
			topN = len(candidates)
		}
		passages = candidates[:topN]
		slog.Warn("rerank_fallback", "error", err, "passages", len(passages))
	}

	answerText, err := uc.generator.GenerateAnswer(ctx, question, strings.Join(passages, contextSeparator))
	if err != nil {
		return nil, domain.WrapError(domain.ErrGenerationUnavailable, "generate answer", err)
	}

	return &domain.Answer{
		Text:           answerText,
		Outcome:        domain.OutcomeAnswered,
		Sources:        matchSources(chunks, passages),
		RerankDegraded: degraded,
	}, nil
}

// matchSources maps reranked passage texts back to their retrieved chunks,
// preserving rerank order. Duplicate texts resolve to the earliest chunk.
func matchSources(chunks []domain.RetrievedChunk, passages []string) []domain.RetrievedChunk {
	byText := make(map[string]domain.RetrievedChunk, len(chunks))
	for i := len(chunks) - 1; i >= 0; i-- {
		byText[chunks[i].Text] = chunks[i]
	}

	out := make([]domain.RetrievedChunk, 0, len(passages))
	for _, passage := range passages {
		if chunk, ok := byText[passage]; ok {
			out = append(out, chunk)
		}
	}
	return out
}
