package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"semdiff/internal/core/config"
	"semdiff/internal/core/errors"
)

// ollamaProvider talks to a local Ollama daemon over its generate endpoint.
// It is the chain's last resort: no credentials, no per-token cost.
type ollamaProvider struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func newOllamaProvider(pc config.Provider) (*ollamaProvider, error) {
	if pc.BaseURL == "" {
		return nil, errors.New(errors.CodeUnavailable, "ollama base url not configured")
	}
	return &ollamaProvider{
		httpClient: &http.Client{},
		baseURL:    strings.TrimSuffix(pc.BaseURL, "/"),
		model:      pc.Model,
	}, nil
}

func (p *ollamaProvider) Name() string { return "ollama" }

func (p *ollamaProvider) Query(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:   p.model,
		Prompt:  systemInstruction + "\n\n" + prompt,
		Stream:  false,
		Options: map[string]any{"temperature": 0.1},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to marshal ollama request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to build ollama request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "ollama request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.New(errors.CodeUnavailable,
			fmt.Sprintf("ollama returned status %d: %s", resp.StatusCode, string(payload)))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, errors.CodeUnavailable, "failed to decode ollama response")
	}
	return out.Response, nil
}
