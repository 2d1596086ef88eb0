package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"semdiff/internal/core/config"
	"semdiff/internal/core/errors"
)

type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGeminiProvider(ctx context.Context, pc config.Provider) (*geminiProvider, error) {
	if pc.APIKey == "" {
		return nil, errors.New(errors.CodeUnavailable, "gemini api key not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(pc.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "failed to create genai client")
	}
	return &geminiProvider{client: client, model: pc.Model}, nil
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Query(ctx context.Context, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	resp, err := model.GenerateContent(ctx, genai.Text(systemInstruction+"\n\n"+prompt))
	if err != nil {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeUnavailable, "content generation failed"),
			errors.CtxProvider, "gemini")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New(errors.CodeUnavailable, "gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}
