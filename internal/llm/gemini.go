package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/sells-group/briefing-service/internal/resilience"
)

// Gemini completes prompts with the Gemini API in JSON response mode.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini completer. baseURL is optional.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(baseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(baseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "llm: create gemini client")
	}
	return &Gemini{client: client, model: strings.TrimSpace(model)}, nil
}

// Complete implements Completer.
func (g *Gemini) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			CandidateCount:    1,
			MaxOutputTokens:   int32(maxTokens),
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code != 0 {
			return "", resilience.NewStatusError(eris.Wrap(err, "llm: gemini complete"), apiErr.Code)
		}
		return "", eris.Wrap(err, "llm: gemini complete")
	}

	if um := resp.UsageMetadata; um != nil {
		logUsage("gemini", g.model, int(um.PromptTokenCount), int(um.CandidatesTokenCount))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
