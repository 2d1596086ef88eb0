package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"semdiff/internal/core/errors"
)

type Config struct {
	Version   int                 `toml:"version"`
	Debug     bool                `toml:"debug"`
	Engine    Engine              `toml:"engine"`
	Languages map[string]Language `toml:"languages"`
	Exclude   Exclude             `toml:"exclude"`
	LLM       LLM                 `toml:"llm"`
	Providers Providers           `toml:"providers"`
	Watch     Watch               `toml:"watch"`
	Metrics   Metrics             `toml:"metrics"`
}

type Engine struct {
	// Workers bounds the per-commit fan-out across files.
	Workers int `toml:"workers"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Exclude struct {
	Paths []string `toml:"paths"`
}

type LLM struct {
	Enabled bool `toml:"enabled"`
	// ComplexityThreshold is the weighted signal score below which the cost
	// gate rejects a diff without any network call.
	ComplexityThreshold int `toml:"complexity_threshold"`
	// MaxSnippetBytes bounds each code snippet embedded in the prompt.
	MaxSnippetBytes int `toml:"max_snippet_bytes"`
	// Order lists provider names in fallback priority order.
	Order []string `toml:"order"`
	// RequestsPerSecond / Burst feed the outbound rate limiter.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type Providers struct {
	OpenAI     Provider `toml:"openai"`
	OpenRouter Provider `toml:"openrouter"`
	Gemini     Provider `toml:"gemini"`
	Ollama     Provider `toml:"ollama"`
}

type Provider struct {
	APIKey  string        `toml:"api_key"`
	Model   string        `toml:"model"`
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	Paths    []string      `toml:"paths"`
}

type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

func Default() *Config {
	return &Config{
		Version: 1,
		Engine:  Engine{Workers: 4},
		LLM: LLM{
			Enabled:             false,
			ComplexityThreshold: 5,
			MaxSnippetBytes:     4000,
			Order:               []string{"openai", "openrouter", "gemini", "ollama"},
			RequestsPerSecond:   1,
			Burst:               2,
		},
		Providers: Providers{
			OpenAI:     Provider{Model: "gpt-4o-mini", Timeout: 30 * time.Second},
			OpenRouter: Provider{Model: "deepseek/deepseek-chat", BaseURL: "https://openrouter.ai/api/v1", Timeout: 30 * time.Second},
			Gemini:     Provider{Model: "gemini-1.5-flash", Timeout: 30 * time.Second},
			Ollama:     Provider{Model: "llama3.1", BaseURL: "http://localhost:11434", Timeout: 60 * time.Second},
		},
		Watch:   Watch{Debounce: 500 * time.Millisecond},
		Metrics: Metrics{Address: ":9290"},
	}
}

// Load reads the TOML config at path, applies env overrides and validates.
// A missing file yields the defaults (still env-overridable).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, errors.Wrap(err, errors.CodeValidationError, "failed to decode config file")
			}
		}
	}
	ApplyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
