// Package llm talks to the structured-extraction service. Two backends are
// supported: any OpenAI-compatible chat completions endpoint and the
// Anthropic Messages API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"govjobs/harvester-service/internal/config"
	"govjobs/harvester-service/internal/model"
)

// ErrMalformed is returned when the service answers with something that is
// not a usable job object.
var ErrMalformed = errors.New("malformed extraction output")

// Request is what the service gets for one candidate.
type Request struct {
	Title     string
	Link      string
	Snippet   string
	Context   string
	DateHints []string
}

// Client extracts a ParsedJob from gathered text.
type Client interface {
	ExtractJob(ctx context.Context, req Request) (*model.ParsedJob, error)
	Name() string
}

// New returns the client selected by cfg, or nil when extraction is not
// configured (no provider or no key). A nil client routes every candidate
// to the deterministic fallback.
func New(cfg config.LLMConfig, hc *http.Client) (Client, error) {
	if cfg.Provider == "" || cfg.APIKey == "" {
		return nil, nil
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, hc), nil
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.Model, hc), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
