package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/coursedocs/course-assistant/internal/infrastructure/resilience"
)

const (
	defaultBaseURL           = "https://api.openai.com"
	defaultTemperature       = 0.5
	defaultSeed              = 12039
	defaultTimeout           = 120 * time.Second
	defaultRequestsPerSecond = 5
)

type Client struct {
	baseURL     string
	apiKey      string
	chatModel   string
	embedModel  string
	temperature float64
	seed        int
	httpClient  *http.Client
	limiter     *rate.Limiter
	executor    *resilience.Executor
}

type Options struct {
	BaseURL string
	Timeout time.Duration

	// Temperature and Seed are pointers so zero values stay expressible.
	Temperature *float64
	Seed        *int

	RequestsPerSecond float64
	Executor          *resilience.Executor
}

func New(apiKey, chatModel, embedModel string) *Client {
	return NewWithOptions(apiKey, chatModel, embedModel, Options{})
}

func NewWithOptions(apiKey, chatModel, embedModel string, options Options) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	temperature := defaultTemperature
	if options.Temperature != nil {
		temperature = *options.Temperature
	}
	seed := defaultSeed
	if options.Seed != nil {
		seed = *options.Seed
	}
	rps := options.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		chatModel:   chatModel,
		embedModel:  embedModel,
		temperature: temperature,
		seed:        seed,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		executor:    options.Executor,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	request := map[string]any{
		"model": e.client.embedModel,
		"input": []string{text},
	}

	var response struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := e.client.postJSON(ctx, "/v1/embeddings", request, &response, "embed"); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return response.Data[0].Embedding, nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	request := map[string]any{
		"model":       g.client.chatModel,
		"temperature": g.client.temperature,
		"seed":        g.client.seed,
		"messages": []map[string]string{
			{"role": "system", "content": qaSystemPrompt},
			{"role": "user", "content": buildQuestionPrompt(question, contextText)},
		},
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := g.client.postJSON(ctx, "/v1/chat/completions", request, &response, "generate"); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty completion result")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
