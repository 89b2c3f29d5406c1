// Package scrape reduces a company homepage to a bounded plain-text summary.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/config"
	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/resilience"
)

const (
	maxBodyBytes = 512 * 1024

	// minElementRunes drops paragraph-like elements that are only icons or labels.
	minElementRunes = 3
)

// removedSelectors are regions that never contribute to a summary.
const removedSelectors = "script, style, nav, header, footer, noscript, svg, iframe"

// paragraphSelectors are the paragraph-like elements read after title and description.
const paragraphSelectors = "h1, h2, p, li"

// Extractor fetches a homepage with one bounded GET and summarizes it.
type Extractor struct {
	client        *http.Client
	userAgent     string
	timeout       time.Duration
	maxChars      int
	maxParagraphs int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// NewExtractor creates an Extractor from the web configuration.
func NewExtractor(cfg config.WebConfig, opts ...Option) *Extractor {
	e := &Extractor{
		userAgent:     cfg.UserAgent,
		timeout:       time.Duration(cfg.TimeoutSecs) * time.Second,
		maxChars:      cfg.MaxChars,
		maxParagraphs: cfg.MaxParagraphs,
	}
	if e.timeout <= 0 {
		e.timeout = 10 * time.Second
	}
	if e.maxChars <= 0 {
		e.maxChars = 2000
	}
	if e.maxParagraphs <= 0 {
		e.maxParagraphs = 8
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		e.client = &http.Client{
			Timeout: e.timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: e.timeout,
				}).DialContext,
				TLSHandshakeTimeout: e.timeout,
			},
		}
	}
	return e
}

// NormalizeURL turns a bare domain or URL into an absolute http(s) URL.
func NormalizeURL(domainOrURL string) (string, error) {
	s := strings.TrimSpace(domainOrURL)
	if s == "" {
		return "", eris.New("scrape: empty domain")
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", eris.Wrap(err, "scrape: parse url")
	}
	if u.Hostname() == "" {
		return "", eris.Errorf("scrape: no host in %q", domainOrURL)
	}
	return u.String(), nil
}

// Extract fetches the homepage for domainOrURL and returns its summary.
// It never fails: on any problem the summary is empty and the tag says why.
func (e *Extractor) Extract(ctx context.Context, domainOrURL string) (string, model.ErrorTag) {
	log := zap.L().With(zap.String("domain", domainOrURL))

	target, err := NormalizeURL(domainOrURL)
	if err != nil {
		log.Warn("scrape: invalid url", zap.Error(err))
		return "", model.TagWebsiteInvalidURL
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body, resp, err := e.fetch(ctx, target)
	if err != nil {
		tag := model.TagWebsiteUnreachable
		if resilience.IsTimeout(err) {
			tag = model.TagWebsiteTimeout
		}
		log.Warn("scrape: fetch failed", zap.String("tag", string(tag)), zap.Error(err))
		return "", tag
	}

	page, err := parseHomepage(resp, body)
	if err != nil {
		log.Warn("scrape: parse failed", zap.Error(err))
		return "", model.TagWebsiteEmpty
	}

	if reason := page.blockReason(); reason != "" {
		log.Warn("scrape: blocked", zap.String("block_type", reason))
		return "", model.TagWebsiteBlocked
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("scrape: non-2xx status", zap.Int("status", resp.StatusCode))
		return "", model.TagWebsiteHTTPStatus
	}

	summary := e.summarize(page.doc)
	if summary == "" {
		log.Warn("scrape: no visible text")
		return "", model.TagWebsiteEmpty
	}

	log.Debug("scrape: extracted summary", zap.Int("chars", len([]rune(summary))))
	return summary, ""
}

func (e *Extractor) fetch(ctx context.Context, target string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, eris.Wrap(err, "scrape: create request")
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nil, eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, eris.Wrap(err, "scrape: read body")
	}
	return body, resp, nil
}

// summarize reads title, meta description and the first paragraph-like
// elements, in that order, and truncates the joined text to maxChars runes.
// The document has already had removedSelectors stripped.
func (e *Extractor) summarize(doc *goquery.Document) string {
	var parts []string
	add := func(s string) {
		s = collapseSpace(s)
		if len([]rune(s)) >= minElementRunes {
			parts = append(parts, s)
		}
	}

	add(doc.Find("title").First().Text())

	desc := doc.Find(`meta[name="description"]`).AttrOr("content", "")
	if strings.TrimSpace(desc) == "" {
		desc = doc.Find(`meta[property="og:description"]`).AttrOr("content", "")
	}
	add(desc)

	n := 0
	doc.Find(paragraphSelectors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		if len([]rune(text)) < minElementRunes {
			return true
		}
		parts = append(parts, text)
		n++
		return n < e.maxParagraphs
	})

	if n == 0 {
		// No paragraph markup: fall back to the visible body text.
		add(doc.Find("body").Text())
	}

	return truncateRunes(strings.Join(dedupe(parts), " "), e.maxChars)
}

// collapseSpace trims s and replaces every whitespace run with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupe drops exact repeats, which are common when title and h1 match.
func dedupe(parts []string) []string {
	seen := make(map[string]bool, len(parts))
	out := parts[:0]
	for _, p := range parts {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
