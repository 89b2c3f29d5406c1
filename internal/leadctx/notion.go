package leadctx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/briefing-service/internal/model"
)

// NotionQuerier is the one Notion API call the context loader makes.
type NotionQuerier interface {
	QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// notionRate is Notion's documented average request rate.
const notionRate = 3

// notionAPI throttles database queries and bounds each with an HTTP timeout.
type notionAPI struct {
	inner   *notionapi.Client
	limiter *rate.Limiter
}

// NewNotionQuerier creates a throttled Notion client. timeout bounds each
// request; zero or less means 15s.
func NewNotionQuerier(token string, timeout time.Duration) NotionQuerier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &notionAPI{
		inner:   notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(&http.Client{Timeout: timeout})),
		limiter: rate.NewLimiter(notionRate, 1),
	}
}

func (n *notionAPI) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "leadctx: notion rate limit")
	}
	resp, err := n.inner.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	if err != nil {
		return nil, eris.Wrapf(err, "leadctx: query notion database %s", dbID)
	}
	return resp, nil
}

// activeStatus is the Status value of campaigns that are currently running.
const activeStatus = "Active"

// activePages follows the result cursor until every Active page is read.
func activePages(ctx context.Context, q NotionQuerier, dbID string) ([]notionapi.Page, error) {
	filter := notionapi.PropertyFilter{
		Property: "Status",
		Status:   &notionapi.StatusFilterCondition{Equals: activeStatus},
	}

	var pages []notionapi.Page
	var cursor notionapi.Cursor
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "leadctx: notion paging")
		}
		resp, err := q.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
			Filter:      filter,
			StartCursor: cursor,
		})
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// Notion property names on the campaign context database.
const (
	propContextID    = "Context ID"
	propCampaignName = "Campaign Name"
	propAdHeadline   = "Ad Headline"
	propAdCTA        = "Ad CTA"
	propPainPoints   = "Pain Points"
	propBudgetRange  = "Budget Range"
	propTimeline     = "Timeline"
)

// LoadNotion queries the Notion campaign database for all Active contexts.
func LoadNotion(ctx context.Context, q NotionQuerier, dbID string) (*Store, error) {
	pages, err := activePages(ctx, q, dbID)
	if err != nil {
		return nil, eris.Wrap(err, "leadctx: load notion contexts")
	}

	entries := make([]model.LeadContext, 0, len(pages))
	for _, p := range pages {
		lc, err := parseContextPage(p)
		if err != nil {
			zap.L().Warn("leadctx: skipping malformed context page",
				zap.String("page_id", string(p.ID)),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, lc)
	}

	return NewStore("notion:"+dbID, entries), nil
}

func parseContextPage(p notionapi.Page) (model.LeadContext, error) {
	lc := model.LeadContext{
		ContextID:    textProp(p.Properties, propContextID),
		CampaignName: textProp(p.Properties, propCampaignName),
		AdHeadline:   textProp(p.Properties, propAdHeadline),
		AdCTA:        textProp(p.Properties, propAdCTA),
		BudgetRange:  textProp(p.Properties, propBudgetRange),
		Timeline:     textProp(p.Properties, propTimeline),
	}

	// Pain Points is a multi_select, or newline-separated rich text.
	if prop, ok := p.Properties[propPainPoints]; ok {
		switch v := prop.(type) {
		case *notionapi.MultiSelectProperty:
			for _, opt := range v.MultiSelect {
				lc.PainPoints = append(lc.PainPoints, opt.Name)
			}
		case *notionapi.RichTextProperty:
			for _, line := range strings.Split(plainText(v.RichText), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					lc.PainPoints = append(lc.PainPoints, line)
				}
			}
		}
	}

	if lc.ContextID == "" {
		return lc, eris.New("leadctx: missing Context ID")
	}
	return lc, nil
}

// textProp reads a title, rich_text or select property as plain text.
func textProp(props notionapi.Properties, name string) string {
	prop, ok := props[name]
	if !ok {
		return ""
	}
	switch v := prop.(type) {
	case *notionapi.TitleProperty:
		return strings.TrimSpace(plainText(v.Title))
	case *notionapi.RichTextProperty:
		return strings.TrimSpace(plainText(v.RichText))
	case *notionapi.SelectProperty:
		return v.Select.Name
	}
	return ""
}

func plainText(rts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range rts {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}
