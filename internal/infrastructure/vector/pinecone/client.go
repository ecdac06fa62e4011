package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coursedocs/course-assistant/internal/core/domain"
	"github.com/coursedocs/course-assistant/internal/infrastructure/resilience"
)

const defaultControlURL = "https://api.pinecone.io"

// Client queries a pre-built Pinecone index. The index itself is produced
// by a separate offline ingestion process; this client is read-only.
type Client struct {
	apiKey     string
	indexName  string
	controlURL string
	httpClient *http.Client
	executor   *resilience.Executor

	hostMu    sync.Mutex
	indexHost string
}

type Options struct {
	// ControlURL overrides the control-plane endpoint used to resolve
	// the index data-plane host.
	ControlURL string
	// IndexHost skips control-plane resolution entirely.
	IndexHost string
	Timeout   time.Duration
	Executor  *resilience.Executor
}

func New(apiKey, indexName string) *Client {
	return NewWithOptions(apiKey, indexName, Options{})
}

func NewWithOptions(apiKey, indexName string, options Options) *Client {
	controlURL := options.ControlURL
	if controlURL == "" {
		controlURL = defaultControlURL
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:     apiKey,
		indexName:  indexName,
		controlURL: strings.TrimRight(controlURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
		indexHost:  options.IndexHost,
	}
}

func (c *Client) Search(
	ctx context.Context,
	queryVector []float32,
	limit int,
	filter domain.SearchFilter,
) ([]domain.RetrievedChunk, error) {
	host, err := c.ensureIndexHost(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"vector":          queryVector,
		"topK":            limit,
		"includeMetadata": true,
	}
	if filter.Topic != "" {
		reqBody["filter"] = map[string]any{
			"topics": map[string]any{
				"$in": []string{filter.Topic},
			},
		}
	}

	var queryResp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.postJSON(ctx, host+"/query", reqBody, &queryResp, "query"); err != nil {
		return nil, err
	}

	out := make([]domain.RetrievedChunk, 0, len(queryResp.Matches))
	for _, match := range queryResp.Matches {
		out = append(out, domain.RetrievedChunk{
			ID:     match.ID,
			Text:   metadataString(match.Metadata, "text"),
			Source: metadataString(match.Metadata, "source"),
			Topics: metadataStrings(match.Metadata, "topics"),
			Score:  match.Score,
		})
	}
	return out, nil
}

// ensureIndexHost resolves the index data-plane host through the control
// plane once and caches it for the process lifetime.
func (c *Client) ensureIndexHost(ctx context.Context) (string, error) {
	c.hostMu.Lock()
	defer c.hostMu.Unlock()

	if c.indexHost != "" {
		return normalizeHost(c.indexHost), nil
	}

	var describeResp struct {
		Host string `json:"host"`
	}
	url := fmt.Sprintf("%s/indexes/%s", c.controlURL, c.indexName)
	if err := c.getJSON(ctx, url, &describeResp, "describe index"); err != nil {
		return "", err
	}
	if strings.TrimSpace(describeResp.Host) == "" {
		return "", fmt.Errorf("pinecone describe index: empty host for %q", c.indexName)
	}

	c.indexHost = describeResp.Host
	return normalizeHost(c.indexHost), nil
}

func normalizeHost(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimRight(host, "/")
	}
	return "https://" + strings.TrimRight(host, "/")
}

func (c *Client) postJSON(ctx context.Context, url string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	return c.do(ctx, http.MethodPost, url, body, out, operation)
}

func (c *Client) getJSON(ctx context.Context, url string, out any, operation string) error {
	return c.do(ctx, http.MethodGet, url, nil, out, operation)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, out any, operation string) error {
	call := func(callCtx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(callCtx, method, url, reader)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		req.Header.Set("Api-Key", c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("pinecone %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &HTTPStatusError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       strings.TrimSpace(string(respBody)),
			}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		return nil
	}

	if c.executor != nil {
		return c.executor.Execute(ctx, "pinecone."+operation, call, classifyPineconeError)
	}
	return call(ctx)
}

func metadataString(metadata map[string]any, key string) string {
	v, ok := metadata[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func metadataStrings(metadata map[string]any, key string) []string {
	raw, ok := metadata[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
