package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"semdiff/internal/core/errors"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Engine.Workers < 1 {
		t.Error("default worker count must be positive")
	}
	if len(cfg.LLM.Order) == 0 {
		t.Error("default provider order must not be empty")
	}
	if cfg.LLM.Enabled {
		t.Error("llm advisory must be opt-in")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.Workers != Default().Engine.Workers {
		t.Error("missing file should fall back to defaults")
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semdiff.toml")
	content := `version = 1
debug = true

[engine]
workers = 8

[llm]
enabled = true
complexity_threshold = 7
max_snippet_bytes = 2000
order = ["ollama"]
requests_per_second = 2.0
burst = 4

[providers.ollama]
model = "codellama"
base_url = "http://127.0.0.1:11434"

[exclude]
paths = ["vendor/**", "**/*_test.py"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Engine.Workers)
	}
	if !cfg.LLM.Enabled || cfg.LLM.ComplexityThreshold != 7 {
		t.Errorf("llm section not applied: %+v", cfg.LLM)
	}
	if len(cfg.LLM.Order) != 1 || cfg.LLM.Order[0] != "ollama" {
		t.Errorf("unexpected provider order: %v", cfg.LLM.Order)
	}
	if cfg.Providers.Ollama.Model != "codellama" {
		t.Errorf("unexpected ollama model: %s", cfg.Providers.Ollama.Model)
	}
	if len(cfg.Exclude.Paths) != 2 {
		t.Errorf("unexpected exclude paths: %v", cfg.Exclude.Paths)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SEMDIFF_ENGINE_WORKERS", "16")
	t.Setenv("SEMDIFF_LLM_ENABLED", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OLLAMA_HOST", "http://10.0.0.5:11434")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.Engine.Workers != 16 {
		t.Errorf("expected 16 workers, got %d", cfg.Engine.Workers)
	}
	if !cfg.LLM.Enabled {
		t.Error("expected llm enabled via env")
	}
	if cfg.Providers.OpenAI.APIKey != "sk-test" {
		t.Error("expected openai key from conventional env")
	}
	if cfg.Providers.Ollama.BaseURL != "http://10.0.0.5:11434" {
		t.Error("expected ollama host from conventional env")
	}
}

func TestEnvOverrideIgnoresInvalidValues(t *testing.T) {
	t.Setenv("SEMDIFF_ENGINE_WORKERS", "many")

	cfg := Default()
	ApplyEnvOverrides(cfg)
	if cfg.Engine.Workers != Default().Engine.Workers {
		t.Error("invalid integer override must be ignored")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Engine.Workers = 0 }},
		{"negative threshold", func(c *Config) { c.LLM.ComplexityThreshold = -1 }},
		{"tiny snippet budget", func(c *Config) { c.LLM.MaxSnippetBytes = 10 }},
		{"zero rate", func(c *Config) { c.LLM.RequestsPerSecond = 0 }},
		{"unknown provider", func(c *Config) { c.LLM.Order = []string{"skynet"} }},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		err := Validate(cfg)
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if !errors.IsCode(err, errors.CodeValidationError) {
			t.Errorf("%s: expected VALIDATION_ERROR code, got %v", tc.name, err)
		}
	}
}
