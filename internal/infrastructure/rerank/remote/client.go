// Package remote calls an external cross-encoder scoring service. The
// model stays loaded in the service's memory; this client is stateless.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/coursedocs/course-assistant/internal/core/domain"
	"github.com/coursedocs/course-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

func New(baseURL, model string) *Client {
	return NewWithOptions(baseURL, model, Options{})
}

func NewWithOptions(baseURL, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
	}
}

func (c *Client) Rerank(ctx context.Context, query string, candidates []string, topN int) ([]string, error) {
	if len(candidates) == 0 {
		return []string{}, nil
	}
	if topN < 0 {
		topN = 0
	}
	if topN > len(candidates) {
		topN = len(candidates)
	}

	reqBody := map[string]any{
		"model":    c.model,
		"query":    query,
		"passages": candidates,
		"top_n":    topN,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	var rerankResp struct {
		Results []struct {
			Index int     `json:"index"`
			Score float64 `json:"score"`
		} `json:"results"`
	}

	call := func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/v1/rerank", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create rerank request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("rerank request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			if msg := strings.TrimSpace(string(respBody)); msg != "" {
				return fmt.Errorf("rerank status: %s: %s", resp.Status, msg)
			}
			return fmt.Errorf("rerank status: %s", resp.Status)
		}
		if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
			return fmt.Errorf("decode rerank response: %w", err)
		}
		return nil
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "rerank.score", call, classifyRerankError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrRerankUnavailable, "rerank", err)
	}

	// Defensive ordering: descending score, candidate order on ties.
	results := rerankResp.Results
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	out := make([]string, 0, topN)
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(candidates) {
			return nil, domain.WrapError(domain.ErrRerankUnavailable, "rerank",
				fmt.Errorf("result index %d out of range", result.Index))
		}
		out = append(out, candidates[result.Index])
		if len(out) == topN {
			break
		}
	}
	return out, nil
}
