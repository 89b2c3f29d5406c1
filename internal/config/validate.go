package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the configuration for the given run mode ("serve" or "brief").
// All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "brief":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if !slices.Contains([]string{"anthropic", "gemini"}, c.LLM.Provider) {
		errs = append(errs, fmt.Sprintf("llm.provider must be anthropic or gemini, got %q", c.LLM.Provider))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, "llm.max_tokens must be > 0")
	}
	if !slices.Contains([]string{"newsapi", "jina"}, c.News.Provider) {
		errs = append(errs, fmt.Sprintf("news.provider must be newsapi or jina, got %q", c.News.Provider))
	}
	if c.News.PageSize < 1 || c.News.PageSize > 20 {
		errs = append(errs, "news.page_size must be between 1 and 20")
	}
	if c.Web.MaxChars <= 0 {
		errs = append(errs, "web.max_chars must be > 0")
	}
	if c.Web.MaxParagraphs <= 0 {
		errs = append(errs, "web.max_paragraphs must be > 0")
	}
	for key, secs := range map[string]int{
		"llm.timeout_secs":        c.LLM.TimeoutSecs,
		"news.timeout_secs":       c.News.TimeoutSecs,
		"web.timeout_secs":        c.Web.TimeoutSecs,
		"salesforce.timeout_secs": c.Salesforce.TimeoutSecs,
	} {
		if secs <= 0 {
			errs = append(errs, key+" must be > 0")
		}
	}

	if c.Monitoring.WebhookURL != "" && (c.Monitoring.FailureRateThreshold <= 0 || c.Monitoring.FailureRateThreshold > 1) {
		errs = append(errs, "monitoring.failure_rate_threshold must be in (0, 1]")
	}

	if !c.SalesforceConfigured() {
		switch c.Store.Driver {
		case "json", "sqlite":
			if c.Store.Path == "" {
				errs = append(errs, "store.path is required for "+c.Store.Driver)
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required for postgres")
			}
		default:
			errs = append(errs, fmt.Sprintf("store.driver must be json, sqlite or postgres, got %q", c.Store.Driver))
		}
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}
