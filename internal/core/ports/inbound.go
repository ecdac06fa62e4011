package ports

import (
	"context"

	"github.com/coursedocs/course-assistant/internal/core/domain"
)

// AssistantService is the inbound contract for answering one question
// through the retrieve-rerank-generate pipeline.
type AssistantService interface {
	Answer(ctx context.Context, question, topic string) (*domain.Answer, error)
}
