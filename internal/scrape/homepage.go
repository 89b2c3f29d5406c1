package scrape

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Block reasons, logged alongside the website_blocked tag.
const (
	blockCloudflare = "cloudflare"
	blockCaptcha    = "captcha"
	blockLoader     = "js_shell"
)

// interstitialMaxRunes bounds the visible text of a challenge page. A page
// with more visible text is real content, even if it embeds a captcha widget.
const interstitialMaxRunes = 600

// loaderMaxBytes is the body size under which a noscript or meta-refresh
// page is only a JavaScript loader.
const loaderMaxBytes = 2000

// challengeSelectors match the markup of Cloudflare interstitials.
const challengeSelectors = "#cf-browser-verification, #challenge-form, #challenge-running, #cf-challenge-running"

var (
	cloudflarePhrases = []string{"checking your browser", "attention required! | cloudflare", "verify you are human"}
	captchaPhrases    = []string{"captcha"}
)

// homepage is a fetched response parsed once. Block checks and the summary
// both read the same document, after script and chrome regions are stripped,
// so widget code never counts as page text.
type homepage struct {
	status    int
	header    http.Header
	doc       *goquery.Document
	challenge bool
	loader    bool
}

func parseHomepage(resp *http.Response, body []byte) (*homepage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse html")
	}

	p := &homepage{
		status:    resp.StatusCode,
		header:    resp.Header,
		doc:       doc,
		challenge: doc.Find(challengeSelectors).Length() > 0,
		loader:    len(body) < loaderMaxBytes && (hasNoscriptNotice(doc) || hasMetaRefresh(doc)),
	}
	doc.Find(removedSelectors).Remove()
	return p, nil
}

// blockReason reports why the page is an anti-bot wall, or "" for real content.
func (p *homepage) blockReason() string {
	if p.status == http.StatusForbidden || p.status == http.StatusServiceUnavailable {
		if p.header.Get("cf-ray") != "" ||
			p.header.Get("cf-cache-status") != "" ||
			strings.EqualFold(p.header.Get("server"), "cloudflare") {
			return blockCloudflare
		}
	}
	if p.challenge {
		return blockCloudflare
	}

	visible := strings.ToLower(p.visibleText())
	if len([]rune(visible)) <= interstitialMaxRunes {
		if containsAny(visible, cloudflarePhrases) ||
			strings.Contains(visible, "cloudflare") && strings.Contains(visible, "challenge") {
			return blockCloudflare
		}
		if containsAny(visible, captchaPhrases) {
			return blockCaptcha
		}
	}

	if p.loader {
		return blockLoader
	}
	return ""
}

// visibleText is the title plus the stripped body text.
func (p *homepage) visibleText() string {
	return collapseSpace(p.doc.Find("title").First().Text() + " " + p.doc.Find("body").Text())
}

func hasNoscriptNotice(doc *goquery.Document) bool {
	found := false
	doc.Find("noscript").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.Contains(strings.ToLower(s.Text()), "javascript")
		return !found
	})
	return found
}

func hasMetaRefresh(doc *goquery.Document) bool {
	found := false
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.EqualFold(strings.TrimSpace(s.AttrOr("http-equiv", "")), "refresh")
		return !found
	})
	return found
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
