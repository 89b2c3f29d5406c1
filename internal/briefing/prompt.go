// Package briefing turns gathered intelligence and lead context into a
// validated five-field sales briefing.
package briefing

import (
	"fmt"
	"strings"

	"github.com/sells-group/briefing-service/internal/model"
)

// maxPromptNews caps how many headlines are embedded in the prompt.
const maxPromptNews = 3

// BuildPrompt renders the single prompt sent to the model. Output is a pure
// function of its inputs.
func BuildPrompt(intel model.CompanyIntelligence, lead model.LeadContext) string {
	var b strings.Builder

	b.WriteString("Generate a pre-call sales briefing for a B2B sales representative.\n\n")

	fmt.Fprintf(&b, "COMPANY DOMAIN: %s\n\n", intel.Domain)

	b.WriteString("COMPANY WEBSITE SUMMARY:\n")
	if strings.TrimSpace(intel.WebsiteSummary) == "" {
		b.WriteString("(not available)\n")
	} else {
		b.WriteString(intel.WebsiteSummary)
		b.WriteString("\n")
	}

	b.WriteString("\nRECENT NEWS:\n")
	if len(intel.NewsItems) == 0 {
		b.WriteString("(no recent news found)\n")
	}
	for i, n := range intel.NewsItems {
		if i == maxPromptNews {
			break
		}
		fmt.Fprintf(&b, "- %s", n.Headline)
		if n.Source != "" {
			fmt.Fprintf(&b, " (%s", n.Source)
			if n.PublishedAt != "" {
				fmt.Fprintf(&b, ", %s", n.PublishedAt)
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
		if n.Snippet != "" {
			fmt.Fprintf(&b, "  %s\n", n.Snippet)
		}
	}

	b.WriteString("\nLEAD CONTEXT:\n")
	if !lead.Found {
		fmt.Fprintf(&b, "(no campaign context for %q)\n", lead.ContextID)
	} else {
		fmt.Fprintf(&b, "Context ID: %s\n", lead.ContextID)
		fmt.Fprintf(&b, "Campaign: %s\n", lead.CampaignName)
		fmt.Fprintf(&b, "Ad headline: %s\n", lead.AdHeadline)
		fmt.Fprintf(&b, "Ad call to action: %s\n", lead.AdCTA)
		fmt.Fprintf(&b, "Pain points: %s\n", strings.Join(lead.PainPoints, "; "))
		fmt.Fprintf(&b, "Budget range: %s\n", lead.BudgetRange)
		fmt.Fprintf(&b, "Timeline: %s\n", lead.Timeline)
	}

	b.WriteString(`
Return ONLY one JSON object, with no markdown and no text outside it, with exactly these keys:
{
  "company_profile": "string: concise business overview",
  "key_updates": ["string: recent development", "..."],
  "lead_angle": "string: value proposition tied to the lead context",
  "conversation_starters": ["string: question", "..."],
  "potential_objections": ["string: objection and how to handle it", "..."]
}
`)
	return b.String()
}
