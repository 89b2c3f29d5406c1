package briefing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/llm"
	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/resilience"
)

const (
	defaultMaxTokens = 1200
	defaultTimeout   = 30 * time.Second
)

// Meta describes how a briefing was produced.
type Meta struct {
	Fallback bool
	Duration time.Duration
}

// Generator makes one model call per briefing.
type Generator struct {
	completer llm.Completer
	maxTokens int
	timeout   time.Duration
}

// NewGenerator creates a Generator. A nil completer yields fallback briefings.
func NewGenerator(c llm.Completer, maxTokens int, timeout time.Duration) *Generator {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{completer: c, maxTokens: maxTokens, timeout: timeout}
}

// Configured reports whether a model is available.
func (g *Generator) Configured() bool {
	return g.completer != nil
}

// Generate produces a validated briefing. Errors are *model.Error of kind
// generation_unavailable or generation_malformed.
func (g *Generator) Generate(ctx context.Context, intel model.CompanyIntelligence, lead model.LeadContext) (*model.Briefing, Meta, error) {
	log := zap.L().With(zap.String("domain", intel.Domain), zap.String("context_id", lead.ContextID))

	if g.completer == nil {
		log.Warn("briefing: no llm configured, returning fallback")
		return Fallback(intel, lead), Meta{Fallback: true}, nil
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.completer.Complete(callCtx, BuildPrompt(intel, lead), g.maxTokens)
	meta := Meta{Duration: time.Since(start)}
	if err != nil {
		log.Error("briefing: llm call failed",
			zap.Error(err),
			zap.Bool("timeout", resilience.IsTimeout(err)),
			zap.Int("status", resilience.StatusCode(err)),
			zap.Bool("empty", errors.Is(err, llm.ErrEmptyResponse)),
		)
		return nil, meta, model.NewError(model.KindGenerationUnavailable,
			"briefing generation is temporarily unavailable", err)
	}

	b, err := Parse(raw)
	if err != nil {
		log.Error("briefing: malformed llm response", zap.Error(err), zap.Int("response_chars", len(raw)))
		return nil, meta, model.NewError(model.KindGenerationMalformed,
			"briefing generation returned an invalid response", err)
	}

	log.Info("briefing: generated", zap.Duration("duration", meta.Duration))
	return b, meta, nil
}
