package news

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/pkg/jina"
	"github.com/sells-group/briefing-service/pkg/newsapi"
)

// maxSnippetRunes bounds each snippet so three items stay small in the prompt.
const maxSnippetRunes = 300

// NewsAPISearcher adapts a NewsAPI client to Searcher.
type NewsAPISearcher struct {
	client newsapi.Client
}

// NewNewsAPISearcher creates a Searcher backed by NewsAPI.org.
func NewNewsAPISearcher(c newsapi.Client) *NewsAPISearcher {
	return &NewsAPISearcher{client: c}
}

// Search queries /v2/everything sorted by publish date.
func (s *NewsAPISearcher) Search(ctx context.Context, query string, limit int) ([]model.NewsItem, error) {
	resp, err := s.client.Everything(ctx, newsapi.EverythingRequest{
		Query:    query,
		PageSize: limit,
		SortBy:   "publishedAt",
		Language: "en",
	})
	if err != nil {
		return nil, eris.Wrap(err, "news: newsapi search")
	}

	items := make([]model.NewsItem, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		snippet := a.Description
		if strings.TrimSpace(snippet) == "" {
			snippet = a.Content
		}
		items = append(items, model.NewsItem{
			Headline:    strings.TrimSpace(a.Title),
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			Snippet:     clip(snippet, maxSnippetRunes),
		})
	}
	sortByRecency(items)
	return items, nil
}

// JinaSearcher adapts a Jina Search client to Searcher. Jina has no date
// sort, so provider order is kept.
type JinaSearcher struct {
	client jina.Client
}

// NewJinaSearcher creates a Searcher backed by Jina AI Search.
func NewJinaSearcher(c jina.Client) *JinaSearcher {
	return &JinaSearcher{client: c}
}

// Search queries Jina for "<company> news".
func (s *JinaSearcher) Search(ctx context.Context, query string, limit int) ([]model.NewsItem, error) {
	resp, err := s.client.Search(ctx, query+" news", jina.WithLimit(limit))
	if err != nil {
		return nil, eris.Wrap(err, "news: jina search")
	}

	items := make([]model.NewsItem, 0, len(resp.Data))
	for _, r := range resp.Data {
		snippet := r.Description
		if strings.TrimSpace(snippet) == "" {
			snippet = r.Content
		}
		items = append(items, model.NewsItem{
			Headline:    strings.TrimSpace(r.Title),
			Source:      hostOf(r.URL),
			PublishedAt: r.Date,
			Snippet:     clip(snippet, maxSnippetRunes),
		})
	}
	return items, nil
}

// sortByRecency orders items newest first. Items with unparseable dates keep
// their relative order after the dated ones.
func sortByRecency(items []model.NewsItem) {
	slices.SortStableFunc(items, func(a, b model.NewsItem) int {
		ta, errA := time.Parse(time.RFC3339, a.PublishedAt)
		tb, errB := time.Parse(time.RFC3339, b.PublishedAt)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		return cmp.Compare(tb.UnixNano(), ta.UnixNano())
	})
}

func hostOf(rawURL string) string {
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimPrefix(s, "www.")
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
