package intel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/briefing-service/internal/model"
)

type fakeWeb struct {
	summary string
	tag     model.ErrorTag
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeWeb) Extract(_ context.Context, _ string) (string, model.ErrorTag) {
	f.calls.Add(1)
	time.Sleep(f.delay)
	return f.summary, f.tag
}

type fakeNews struct {
	items   []model.NewsItem
	tag     model.ErrorTag
	delay   time.Duration
	company string
}

func (f *fakeNews) Search(_ context.Context, company string) ([]model.NewsItem, model.ErrorTag) {
	f.company = company
	time.Sleep(f.delay)
	return f.items, f.tag
}

func TestGather_BothSucceed(t *testing.T) {
	t.Parallel()

	web := &fakeWeb{summary: "Acme builds widgets."}
	ns := &fakeNews{items: []model.NewsItem{{Headline: "Acme raises $40M", Source: "TechCrunch"}}}

	ci := NewAggregator(web, ns).Gather(context.Background(), "www.acme.com")

	assert.Equal(t, "www.acme.com", ci.Domain)
	assert.Equal(t, "Acme builds widgets.", ci.WebsiteSummary)
	assert.Len(t, ci.NewsItems, 1)
	assert.Empty(t, ci.ExtractionErrors)
	assert.Equal(t, "Acme", ns.company)
}

func TestGather_BothFail(t *testing.T) {
	t.Parallel()

	web := &fakeWeb{tag: model.TagWebsiteUnreachable}
	ns := &fakeNews{tag: model.TagNewsNotConfigured}

	ci := NewAggregator(web, ns).Gather(context.Background(), "unreachable-domain-xyz.invalid")

	assert.Empty(t, ci.WebsiteSummary)
	assert.NotNil(t, ci.NewsItems)
	assert.Empty(t, ci.NewsItems)
	assert.Equal(t, []model.ErrorTag{model.TagNewsNotConfigured, model.TagWebsiteUnreachable}, ci.ExtractionErrors)
}

func TestGather_TaggedSummaryIsDropped(t *testing.T) {
	t.Parallel()

	web := &fakeWeb{summary: "partial", tag: model.TagWebsiteHTTPStatus}
	ns := &fakeNews{}

	ci := NewAggregator(web, ns).Gather(context.Background(), "acme.com")
	assert.Empty(t, ci.WebsiteSummary)
	assert.Equal(t, []model.ErrorTag{model.TagWebsiteHTTPStatus}, ci.ExtractionErrors)
}

func TestGather_RunsConcurrently(t *testing.T) {
	t.Parallel()

	web := &fakeWeb{summary: "s", delay: 150 * time.Millisecond}
	ns := &fakeNews{delay: 150 * time.Millisecond}

	start := time.Now()
	NewAggregator(web, ns).Gather(context.Background(), "acme.com")
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 290*time.Millisecond, "fetches should overlap, not run back to back")
}

func TestGather_Deterministic(t *testing.T) {
	t.Parallel()

	web := &fakeWeb{summary: "Acme builds widgets.", tag: ""}
	ns := &fakeNews{items: []model.NewsItem{{Headline: "h1"}, {Headline: "h2"}}, tag: ""}
	agg := NewAggregator(web, ns)

	first := agg.Gather(context.Background(), "acme.com")
	second := agg.Gather(context.Background(), "acme.com")

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), web.calls.Load())
}
