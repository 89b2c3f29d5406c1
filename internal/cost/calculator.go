// Package cost prices LLM token usage.
package cost

import (
	"strings"

	"github.com/sells-group/briefing-service/internal/model"
)

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates maps model ids to their pricing. A key ending in "*" matches any
// model id with that prefix.
type Rates map[string]ModelRate

// Calculator computes costs for LLM calls.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Rate returns the pricing for modelID. Exact ids win over prefix matches.
func (c *Calculator) Rate(modelID string) (ModelRate, bool) {
	if r, ok := c.rates[modelID]; ok {
		return r, true
	}
	best, found := "", false
	var rate ModelRate
	for k, r := range c.rates {
		prefix, ok := strings.CutSuffix(k, "*")
		if !ok || !strings.HasPrefix(modelID, prefix) {
			continue
		}
		if len(prefix) > len(best) || !found {
			best, rate, found = prefix, r, true
		}
	}
	return rate, found
}

// Usage prices one call. Unknown models cost 0.
func (c *Calculator) Usage(modelID string, input, output int) model.TokenUsage {
	u := model.TokenUsage{InputTokens: input, OutputTokens: output}
	if r, ok := c.Rate(modelID); ok {
		u.Cost = (float64(input)/1e6)*r.Input + (float64(output)/1e6)*r.Output
	}
	return u
}

// DefaultRates returns list pricing for the supported models.
func DefaultRates() Rates {
	return Rates{
		"claude-haiku-4-5-20251001":  {Input: 1.00, Output: 5.00},
		"claude-haiku-4-5*":          {Input: 1.00, Output: 5.00},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		"claude-sonnet-4*":           {Input: 3.00, Output: 15.00},
		"claude-opus-4*":             {Input: 15.00, Output: 75.00},
		"gemini-2.5-flash":           {Input: 0.30, Output: 2.50},
		"gemini-2.5-flash-lite":      {Input: 0.10, Output: 0.40},
		"gemini-2.5-pro":             {Input: 1.25, Output: 10.00},
	}
}
