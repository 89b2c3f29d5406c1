package model

import (
	"slices"
	"strings"
)

// ErrorTag names a degraded data source in a CompanyIntelligence record.
type ErrorTag string

const (
	TagWebsiteUnreachable ErrorTag = "website_unreachable"
	TagWebsiteTimeout     ErrorTag = "website_timeout"
	TagWebsiteHTTPStatus  ErrorTag = "website_http_status"
	TagWebsiteBlocked     ErrorTag = "website_blocked"
	TagWebsiteEmpty       ErrorTag = "website_empty"
	TagWebsiteInvalidURL  ErrorTag = "website_invalid_url"

	TagNewsNotConfigured ErrorTag = "news_not_configured"
	TagNewsTimeout       ErrorTag = "news_timeout"
	TagNewsUnavailable   ErrorTag = "news_unavailable"
)

// Source returns the data source prefix of the tag ("website" or "news").
func (t ErrorTag) Source() string {
	s, _, _ := strings.Cut(string(t), "_")
	return s
}

// NewsItem is a single headline returned by the news lookup.
type NewsItem struct {
	Headline    string `json:"headline"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Snippet     string `json:"snippet"`
}

// CompanyIntelligence is the merged website and news data for one domain.
// It is built fresh for each request and never persisted.
type CompanyIntelligence struct {
	Domain           string     `json:"domain"`
	WebsiteSummary   string     `json:"website_summary"`
	NewsItems        []NewsItem `json:"news_items"`
	ExtractionErrors []ErrorTag `json:"extraction_errors"`
}

// HasWebsite reports whether a website summary was extracted.
func (ci CompanyIntelligence) HasWebsite() bool {
	return strings.TrimSpace(ci.WebsiteSummary) != ""
}

// MergeTags returns the non-empty tags as a sorted set.
func MergeTags(tags ...ErrorTag) []ErrorTag {
	out := make([]ErrorTag, 0, len(tags))
	for _, t := range tags {
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
