// Package intel gathers website and news intelligence for a company domain.
package intel

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/news"
)

// WebExtractor summarizes a company homepage.
type WebExtractor interface {
	Extract(ctx context.Context, domainOrURL string) (string, model.ErrorTag)
}

// NewsSearcher looks up recent headlines for a company name.
type NewsSearcher interface {
	Search(ctx context.Context, company string) ([]model.NewsItem, model.ErrorTag)
}

// Aggregator runs the website and news fetches concurrently and merges them.
type Aggregator struct {
	web  WebExtractor
	news NewsSearcher
}

// NewAggregator creates an Aggregator.
func NewAggregator(web WebExtractor, ns NewsSearcher) *Aggregator {
	return &Aggregator{web: web, news: ns}
}

// Gather returns the CompanyIntelligence for domain. It waits for both
// fetches, each bounded by its own timeout, and never fails: a failed fetch
// leaves its field empty and adds a tag to ExtractionErrors.
func (a *Aggregator) Gather(ctx context.Context, domain string) model.CompanyIntelligence {
	log := zap.L().With(zap.String("domain", domain))
	start := time.Now()

	var (
		summary  string
		webTag   model.ErrorTag
		items    []model.NewsItem
		newsTag  model.ErrorTag
		webDur   time.Duration
		newsDur  time.Duration
		company  = news.CompanyName(domain)
		g        errgroup.Group
	)

	g.Go(func() error {
		t := time.Now()
		summary, webTag = a.web.Extract(ctx, domain)
		webDur = time.Since(t)
		return nil
	})

	g.Go(func() error {
		t := time.Now()
		items, newsTag = a.news.Search(ctx, company)
		newsDur = time.Since(t)
		return nil
	})

	// Failures are carried as tags, never as group errors.
	_ = g.Wait()

	if items == nil {
		items = []model.NewsItem{}
	}
	ci := model.CompanyIntelligence{
		Domain:           domain,
		WebsiteSummary:   summary,
		NewsItems:        items,
		ExtractionErrors: model.MergeTags(webTag, newsTag),
	}
	if webTag != "" {
		ci.WebsiteSummary = ""
	}

	log.Info("intel: gathered",
		zap.String("company", company),
		zap.Int("summary_chars", len([]rune(ci.WebsiteSummary))),
		zap.Int("news_count", len(ci.NewsItems)),
		zap.Strings("errors", tagStrings(ci.ExtractionErrors)),
		zap.Int64("web_ms", webDur.Milliseconds()),
		zap.Int64("news_ms", newsDur.Milliseconds()),
		zap.Int64("total_ms", time.Since(start).Milliseconds()),
	)
	return ci
}

func tagStrings(tags []model.ErrorTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
