package briefing

import (
	"fmt"

	"github.com/sells-group/briefing-service/internal/model"
)

// placeholderPrefix marks every field of a fallback briefing.
const placeholderPrefix = "[placeholder] "

// Fallback returns the labelled briefing used when no model is configured.
func Fallback(intel model.CompanyIntelligence, lead model.LeadContext) *model.Briefing {
	campaign := "no campaign context"
	if lead.Found {
		campaign = lead.CampaignName
	}
	return &model.Briefing{
		CompanyProfile: placeholderPrefix + fmt.Sprintf("AI briefing unavailable for %s; configure an LLM API key.", intel.Domain),
		KeyUpdates:     []string{placeholderPrefix + "No AI analysis of recent news."},
		LeadAngle:      placeholderPrefix + fmt.Sprintf("Lead angle not generated (%s).", campaign),
		ConversationStarters: []string{
			placeholderPrefix + "Tell me about your current business challenges.",
			placeholderPrefix + "What solutions are you evaluating today?",
		},
		PotentialObjections: []string{placeholderPrefix + "Objection handling not generated."},
	}
}
