package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: SEMDIFF_[SECTION]_[KEY], plus the conventional provider key envs.
func ApplyEnvOverrides(cfg *Config) {
	setEnvBool(&cfg.Debug, "SEMDIFF_DEBUG")
	setEnvInt(&cfg.Engine.Workers, "SEMDIFF_ENGINE_WORKERS")

	setEnvBool(&cfg.LLM.Enabled, "SEMDIFF_LLM_ENABLED")
	setEnvInt(&cfg.LLM.ComplexityThreshold, "SEMDIFF_LLM_COMPLEXITY_THRESHOLD")
	setEnvInt(&cfg.LLM.MaxSnippetBytes, "SEMDIFF_LLM_MAX_SNIPPET_BYTES")

	// Hosted providers use their conventional env names so existing
	// credentials are picked up without a config file.
	setEnvString(&cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	setEnvString(&cfg.Providers.OpenAI.Model, "OPENAI_MODEL")
	setEnvString(&cfg.Providers.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setEnvString(&cfg.Providers.OpenRouter.Model, "OPENROUTER_MODEL")
	setEnvString(&cfg.Providers.Gemini.APIKey, "GOOGLE_API_KEY")
	setEnvString(&cfg.Providers.Gemini.Model, "GEMINI_MODEL")
	setEnvString(&cfg.Providers.Ollama.BaseURL, "OLLAMA_HOST")
	setEnvString(&cfg.Providers.Ollama.Model, "OLLAMA_MODEL")

	setEnvDuration(&cfg.Watch.Debounce, "SEMDIFF_WATCH_DEBOUNCE")
	setEnvBool(&cfg.Metrics.Enabled, "SEMDIFF_METRICS_ENABLED")
	setEnvString(&cfg.Metrics.Address, "SEMDIFF_METRICS_ADDRESS")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		*target = val
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			slog.Warn("ignoring invalid boolean env override", "key", key, "value", val)
			return
		}
		*target = parsed
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			slog.Warn("ignoring invalid integer env override", "key", key, "value", val)
			return
		}
		*target = parsed
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			slog.Warn("ignoring invalid duration env override", "key", key, "value", val)
			return
		}
		*target = parsed
	}
}
