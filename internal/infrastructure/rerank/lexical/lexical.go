// Package lexical implements an in-process reranker that scores passages
// by query token overlap. It has no backend to lose, which makes it the
// always-available default ordering model.
package lexical

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

type Reranker struct{}

func New() *Reranker {
	return &Reranker{}
}

// Rerank keeps the best topN candidates ordered by descending overlap with
// the query. Ties preserve the candidates' original retrieval order.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []string, topN int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []string{}, nil
	}
	if topN < 0 {
		topN = 0
	}
	if topN > len(candidates) {
		topN = len(candidates)
	}

	queryTokens := toTokenSet(query)

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, candidate := range candidates {
		ranked[i] = scored{
			index: i,
			score: tokenOverlap(queryTokens, toTokenSet(candidate)),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]string, 0, topN)
	for _, entry := range ranked[:topN] {
		out = append(out, candidates[entry.index])
	}
	return out, nil
}

func tokenOverlap(query, candidate map[string]struct{}) float64 {
	if len(query) == 0 || len(candidate) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if _, ok := candidate[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := splitAlphaNumLower(s)
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
