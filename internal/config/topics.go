package config

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/coursedocs/course-assistant/internal/core/domain"
)

// LoadTopics reads the static topic list used to populate the search
// filter. A missing or malformed file is not fatal: the assistant degrades
// to the single unfiltered option.
func LoadTopics(path string) []string {
	fallback := []string{domain.TopicAll}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("topics_file_unavailable", "path", path, "error", err)
		return fallback
	}

	var topics []string
	if err := json.Unmarshal(data, &topics); err != nil {
		slog.Warn("topics_file_malformed", "path", path, "error", err)
		return fallback
	}

	return normalizeTopics(topics)
}

// normalizeTopics guarantees the sentinel option is present and first, and
// drops empty or duplicate entries while keeping the file's order.
func normalizeTopics(topics []string) []string {
	out := []string{domain.TopicAll}
	seen := map[string]struct{}{domain.TopicAll: {}}

	for _, topic := range topics {
		if topic == "" {
			continue
		}
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}
