// Package news looks up recent headlines for a company.
package news

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/briefing-service/internal/config"
	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/resilience"
	"github.com/sells-group/briefing-service/pkg/jina"
	"github.com/sells-group/briefing-service/pkg/newsapi"
)

// Searcher is a news-search provider.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.NewsItem, error)
}

// Lookup runs one bounded news search per company and never fails.
// A nil searcher means no provider is configured.
type Lookup struct {
	searcher Searcher
	limit    int
	timeout  time.Duration
}

// NewLookup creates a Lookup over the given provider.
func NewLookup(s Searcher, limit int, timeout time.Duration) *Lookup {
	if limit <= 0 {
		limit = 3
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Lookup{searcher: s, limit: limit, timeout: timeout}
}

// New creates a Lookup for the provider selected in cfg. When the provider
// has no API key the Lookup reports news_not_configured on every call.
func New(cfg *config.Config) *Lookup {
	timeout := time.Duration(cfg.News.TimeoutSecs) * time.Second

	var s Searcher
	if cfg.NewsConfigured() {
		switch cfg.News.Provider {
		case "jina":
			s = NewJinaSearcher(jina.NewClient(cfg.Jina.Key, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL)))
		default:
			s = NewNewsAPISearcher(newsapi.NewClient(cfg.News.Key, newsapi.WithBaseURL(cfg.News.BaseURL)))
		}
	} else {
		zap.L().Info("news: provider not configured, headlines disabled",
			zap.String("provider", cfg.News.Provider))
	}
	return NewLookup(s, cfg.News.PageSize, timeout)
}

// Configured reports whether a provider is available.
func (l *Lookup) Configured() bool {
	return l.searcher != nil
}

// Search returns up to limit headlines for company, most recent first.
// On failure it returns an empty list and the tag describing why.
func (l *Lookup) Search(ctx context.Context, company string) ([]model.NewsItem, model.ErrorTag) {
	if l.searcher == nil {
		return []model.NewsItem{}, model.TagNewsNotConfigured
	}
	log := zap.L().With(zap.String("company", company))
	if strings.TrimSpace(company) == "" {
		log.Warn("news: empty company name")
		return []model.NewsItem{}, model.TagNewsUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	items, err := l.searcher.Search(ctx, company, l.limit)
	if err != nil {
		tag := model.TagNewsUnavailable
		if resilience.IsTimeout(err) {
			tag = model.TagNewsTimeout
		}
		log.Warn("news: search failed", zap.String("tag", string(tag)), zap.Error(err))
		return []model.NewsItem{}, tag
	}

	out := make([]model.NewsItem, 0, min(len(items), l.limit))
	for _, it := range items {
		if strings.TrimSpace(it.Headline) == "" {
			continue
		}
		out = append(out, it)
		if len(out) == l.limit {
			break
		}
	}
	log.Debug("news: found headlines", zap.Int("count", len(out)))
	return out, ""
}

// secondLevelLabels are labels that form a public suffix together with a
// two-letter country code, as in "co.uk" or "com.au".
var secondLevelLabels = map[string]bool{
	"co": true, "com": true, "org": true, "net": true,
	"ac": true, "gov": true, "edu": true, "ltd": true,
}

// CompanyName derives a searchable company name from a domain or URL:
// "https://www.acme-widgets.co.uk/about" becomes "Acme Widgets".
func CompanyName(domain string) string {
	host := strings.ToLower(strings.TrimSpace(domain))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "www.")
	host = strings.Trim(host, ".")
	if host == "" {
		return ""
	}

	labels := strings.Split(host, ".")
	switch {
	case len(labels) >= 3 && len(labels[len(labels)-1]) == 2 && secondLevelLabels[labels[len(labels)-2]]:
		labels = labels[:len(labels)-2]
	case len(labels) >= 2:
		labels = labels[:len(labels)-1]
	}

	name := labels[len(labels)-1]
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	// Casers are stateful, so one is built per call.
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}
