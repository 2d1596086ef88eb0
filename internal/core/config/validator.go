package config

import (
	"fmt"

	"semdiff/internal/core/errors"
)

var knownProviders = map[string]bool{
	"openai":     true,
	"openrouter": true,
	"gemini":     true,
	"ollama":     true,
}

// Validate rejects configurations the engine cannot run with.
func Validate(cfg *Config) error {
	if cfg.Engine.Workers < 1 {
		return errors.New(errors.CodeValidationError, "engine.workers must be >= 1")
	}
	if cfg.LLM.ComplexityThreshold < 0 {
		return errors.New(errors.CodeValidationError, "llm.complexity_threshold must be >= 0")
	}
	if cfg.LLM.MaxSnippetBytes < 100 {
		return errors.New(errors.CodeValidationError, "llm.max_snippet_bytes must be >= 100")
	}
	if cfg.LLM.RequestsPerSecond <= 0 {
		return errors.New(errors.CodeValidationError, "llm.requests_per_second must be > 0")
	}
	for _, name := range cfg.LLM.Order {
		if !knownProviders[name] {
			return errors.New(errors.CodeValidationError,
				fmt.Sprintf("llm.order contains unknown provider: %s", name))
		}
	}
	if cfg.Watch.Debounce < 0 {
		return errors.New(errors.CodeValidationError, "watch.debounce must be >= 0")
	}
	return nil
}
