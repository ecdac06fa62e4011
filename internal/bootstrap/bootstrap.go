package bootstrap

import (
	"context"
	"fmt"

	"github.com/coursedocs/course-assistant/internal/config"
	"github.com/coursedocs/course-assistant/internal/core/ports"
	"github.com/coursedocs/course-assistant/internal/core/usecase"
	"github.com/coursedocs/course-assistant/internal/infrastructure/llm/openai"
	"github.com/coursedocs/course-assistant/internal/infrastructure/queue/nats"
	"github.com/coursedocs/course-assistant/internal/infrastructure/rerank/lexical"
	"github.com/coursedocs/course-assistant/internal/infrastructure/rerank/remote"
	"github.com/coursedocs/course-assistant/internal/infrastructure/resilience"
	"github.com/coursedocs/course-assistant/internal/infrastructure/vector/pinecone"
	"github.com/coursedocs/course-assistant/internal/observability/metrics"
)

// App is the dependency-injection context built once at process start.
// Every shared handle in it is immutable after construction and safe to
// reuse across sequential turns.
type App struct {
	Config config.Config
	Topics []string

	Assistant ports.AssistantService
	Session   *usecase.Session
	Events    *nats.Queue
	Metrics   *metrics.PipelineMetrics

	closeFn func()
}

func New(_ context.Context, cfg config.Config, service string) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	openaiClient := openai.NewWithOptions(cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAIEmbedModel, openai.Options{
		Temperature: &cfg.OpenAITemperature,
		Seed:        &cfg.OpenAISeed,
		Executor:    executor,
	})
	embedder := openai.NewEmbedder(openaiClient)
	generator := openai.NewGenerator(openaiClient)

	index := pinecone.NewWithOptions(cfg.PineconeAPIKey, cfg.PineconeIndexName, pinecone.Options{
		IndexHost: cfg.PineconeIndexHost,
		Executor:  executor,
	})

	var reranker ports.Reranker
	switch cfg.RerankMode {
	case "remote":
		reranker = remote.NewWithOptions(cfg.RerankURL, cfg.RerankModel, remote.Options{Executor: executor})
	case "", "lexical":
		reranker = lexical.New()
	default:
		return nil, fmt.Errorf("unknown rerank mode %q", cfg.RerankMode)
	}

	topics := config.LoadTopics(cfg.TopicsPath)
	pipelineMetrics := metrics.NewPipelineMetrics()

	var events ports.EventPublisher = usecase.NopEventPublisher{}
	var queue *nats.Queue
	closeFn := func() {}
	if cfg.EventsEnabled {
		var err error
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init event queue: %w", err)
		}
		events = queue
		closeFn = queue.Close
	}

	assistant := usecase.NewAnswerUseCaseWithLimits(
		embedder, index, reranker, generator,
		cfg.RetrievalTopK, cfg.RerankTopN,
	)
	session := usecase.NewSession(assistant, events, pipelineMetrics, service)

	return &App{
		Config:    cfg,
		Topics:    topics,
		Assistant: assistant,
		Session:   session,
		Events:    queue,
		Metrics:   pipelineMetrics,
		closeFn:   closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
