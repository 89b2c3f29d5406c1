// Package llm adapts hosted model SDKs to a single text-completion call.
package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/config"
	"github.com/sells-group/briefing-service/internal/cost"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// pricing estimates the cost of each logged call.
var pricing = cost.NewCalculator(cost.DefaultRates())

// Completer sends one prompt and returns the model's raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// New builds the Completer selected by llm.provider. It returns nil when the
// provider has no API key so callers can fall back.
func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	if !cfg.LLMConfigured() {
		zap.L().Info("llm: no api key configured, briefings will use the fallback",
			zap.String("provider", cfg.LLM.Provider))
		return nil, nil
	}

	switch cfg.LLM.Provider {
	case "gemini":
		g, err := NewGemini(ctx, cfg.Gemini.Key, cfg.Gemini.Model, cfg.Gemini.BaseURL)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return NewAnthropicFromConfig(cfg.Anthropic), nil
	}
}

// logUsage records token usage and estimated cost for one call.
func logUsage(provider, modelID string, input, output int) {
	u := pricing.Usage(modelID, input, output)
	zap.L().Info("llm: usage",
		zap.String("provider", provider),
		zap.String("model", modelID),
		zap.Int("input_tokens", u.InputTokens),
		zap.Int("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.Cost),
	)
}
