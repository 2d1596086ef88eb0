package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"semdiff/internal/core/config"
	"semdiff/internal/core/errors"
)

// openAIProvider serves both the hosted OpenAI endpoint and any
// OpenAI-compatible gateway (OpenRouter) selected via base URL.
type openAIProvider struct {
	name   string
	client *openai.Client
	model  string
}

func newOpenAIProvider(name string, pc config.Provider) (*openAIProvider, error) {
	if pc.APIKey == "" {
		return nil, errors.New(errors.CodeUnavailable, fmt.Sprintf("%s api key not configured", name))
	}
	cfg := openai.DefaultConfig(pc.APIKey)
	if pc.BaseURL != "" {
		cfg.BaseURL = pc.BaseURL
	}
	return &openAIProvider{
		name:   name,
		client: openai.NewClientWithConfig(cfg),
		model:  pc.Model,
	}, nil
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) Query(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", errors.AddContext(
			errors.Wrap(err, errors.CodeUnavailable, "chat completion failed"),
			errors.CtxProvider, p.name)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.CodeUnavailable, fmt.Sprintf("%s returned no choices", p.name))
	}
	return resp.Choices[0].Message.Content, nil
}
