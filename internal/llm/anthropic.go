package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-service/internal/config"
	"github.com/sells-group/briefing-service/internal/resilience"
	"github.com/sells-group/briefing-service/pkg/anthropic"
)

const systemPrompt = "You are a sales research assistant. Respond with a single JSON object and nothing else."

// Anthropic completes prompts with the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic wraps an existing anthropic.Client.
func NewAnthropic(client anthropic.Client, model string) *Anthropic {
	return &Anthropic{client: client, model: model}
}

// NewAnthropicFromConfig builds the SDK client from config.
func NewAnthropicFromConfig(cfg config.AnthropicConfig) *Anthropic {
	client := anthropic.NewClient(cfg.Key, anthropic.WithBaseURL(cfg.BaseURL))
	return NewAnthropic(client, cfg.Model)
}

// Complete implements Completer.
func (a *Anthropic) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: int64(maxTokens),
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		if code := anthropic.StatusCode(err); code != 0 {
			return "", resilience.NewStatusError(eris.Wrap(err, "llm: anthropic complete"), code)
		}
		return "", eris.Wrap(err, "llm: anthropic complete")
	}

	logUsage("anthropic", a.model, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
