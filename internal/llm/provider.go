// Package llm implements the advisory classifier stage: a cost-gated prompt
// against a prioritized chain of hosted and local model providers.
package llm

import (
	"context"
	"log/slog"
	"time"

	"semdiff/internal/core/config"
	"semdiff/internal/core/errors"
	"semdiff/internal/shared/observability"
)

// Provider is one backing model endpoint.
type Provider interface {
	Name() string
	Query(ctx context.Context, prompt string) (string, error)
}

type providerEntry struct {
	provider Provider
	timeout  time.Duration
}

// Registry holds providers in fallback priority order. Construction skips
// providers whose credentials are absent rather than failing startup.
type Registry struct {
	entries []providerEntry
}

func NewRegistry(ctx context.Context, cfg *config.Config) *Registry {
	r := &Registry{}
	for _, name := range cfg.LLM.Order {
		pc := providerConfig(name, cfg)
		p, err := buildProvider(ctx, name, pc)
		if err != nil {
			slog.Warn("llm provider unavailable", "provider", name, "error", err)
			continue
		}
		r.entries = append(r.entries, providerEntry{provider: p, timeout: pc.Timeout})
	}
	return r
}

func providerConfig(name string, cfg *config.Config) config.Provider {
	switch name {
	case "openai":
		return cfg.Providers.OpenAI
	case "openrouter":
		return cfg.Providers.OpenRouter
	case "gemini":
		return cfg.Providers.Gemini
	case "ollama":
		return cfg.Providers.Ollama
	}
	return config.Provider{}
}

func buildProvider(ctx context.Context, name string, pc config.Provider) (Provider, error) {
	switch name {
	case "openai", "openrouter":
		return newOpenAIProvider(name, pc)
	case "gemini":
		return newGeminiProvider(ctx, pc)
	case "ollama":
		return newOllamaProvider(pc)
	default:
		return nil, errors.New(errors.CodeValidationError, "unknown provider "+name)
	}
}

// Register appends a provider with a timeout, mainly for tests.
func (r *Registry) Register(p Provider, timeout time.Duration) {
	r.entries = append(r.entries, providerEntry{provider: p, timeout: timeout})
}

func (r *Registry) Len() int { return len(r.entries) }

// Query walks the chain in order; the first provider returning without error
// wins. All providers failing yields the empty JSON array, never an error.
func (r *Registry) Query(ctx context.Context, prompt string) string {
	for _, e := range r.entries {
		observability.ProviderAttempts.WithLabelValues(e.provider.Name()).Inc()

		qctx := ctx
		var cancel context.CancelFunc
		if e.timeout > 0 {
			qctx, cancel = context.WithTimeout(ctx, e.timeout)
		}
		response, err := e.provider.Query(qctx, prompt)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			observability.ProviderFailures.WithLabelValues(e.provider.Name()).Inc()
			slog.Debug("llm provider failed, trying next", "provider", e.provider.Name(), "error", err)
			continue
		}
		return response
	}
	return "[]"
}
