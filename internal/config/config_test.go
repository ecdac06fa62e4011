package config

import (
	"strings"
	"testing"

	"github.com/coursedocs/course-assistant/internal/core/domain"
)

func setRequiredKeys(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PINECONE_API_KEY", "pc-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredKeys(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Errorf("APIPort = %q, want 8080", cfg.APIPort)
	}
	if cfg.OpenAIChatModel != "gpt-4-turbo" {
		t.Errorf("OpenAIChatModel = %q", cfg.OpenAIChatModel)
	}
	if cfg.OpenAIEmbedModel != "text-embedding-3-small" {
		t.Errorf("OpenAIEmbedModel = %q", cfg.OpenAIEmbedModel)
	}
	if cfg.OpenAITemperature != 0.5 {
		t.Errorf("OpenAITemperature = %v", cfg.OpenAITemperature)
	}
	if cfg.OpenAISeed != 12039 {
		t.Errorf("OpenAISeed = %d", cfg.OpenAISeed)
	}
	if cfg.RetrievalTopK != 25 {
		t.Errorf("RetrievalTopK = %d, want 25", cfg.RetrievalTopK)
	}
	if cfg.RerankTopN != 5 {
		t.Errorf("RerankTopN = %d, want 5", cfg.RerankTopN)
	}
	if cfg.RerankMode != "lexical" {
		t.Errorf("RerankMode = %q, want lexical", cfg.RerankMode)
	}
	if cfg.EventsEnabled {
		t.Errorf("EventsEnabled should default to false")
	}
}

func TestLoadMissingOpenAIKeyNamesTheKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PINECONE_API_KEY", "pc-test")

	_, err := Load()
	if !domain.IsKind(err, domain.ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("error must name the missing key, got %q", err.Error())
	}
}

func TestLoadMissingPineconeKeyNamesTheKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PINECONE_API_KEY", "")

	_, err := Load()
	if !domain.IsKind(err, domain.ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "PINECONE_API_KEY") {
		t.Fatalf("error must name the missing key, got %q", err.Error())
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredKeys(t)
	t.Setenv("API_PORT", "9999")
	t.Setenv("RETRIEVAL_TOP_K", "40")
	t.Setenv("RERANK_MODE", "remote")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9999" {
		t.Errorf("APIPort = %q", cfg.APIPort)
	}
	if cfg.RetrievalTopK != 40 {
		t.Errorf("RetrievalTopK = %d", cfg.RetrievalTopK)
	}
	if cfg.RerankMode != "remote" {
		t.Errorf("RerankMode = %q", cfg.RerankMode)
	}
	if !cfg.EventsEnabled {
		t.Errorf("EventsEnabled should be true")
	}
	if cfg.OpenAITemperature != 0.2 {
		t.Errorf("OpenAITemperature = %v", cfg.OpenAITemperature)
	}
}

func TestEnvOrIntIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "not-a-number")

	if got := envOrInt("RETRIEVAL_TOP_K", 25); got != 25 {
		t.Fatalf("envOrInt() = %d, want fallback 25", got)
	}
}

func TestEnvOrBoolIgnoresMalformedValues(t *testing.T) {
	t.Setenv("EVENTS_ENABLED", "yes-please")

	if got := envOrBool("EVENTS_ENABLED", false); got {
		t.Fatalf("envOrBool() should fall back to false on malformed input")
	}
}
