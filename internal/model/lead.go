package model

// LeadContext holds the campaign and behavioral data for a context id.
// Found=false is a normal lookup outcome, not an error.
type LeadContext struct {
	ContextID    string   `json:"context_id" yaml:"context_id"`
	CampaignName string   `json:"campaign_name" yaml:"campaign_name"`
	AdHeadline   string   `json:"ad_headline" yaml:"ad_headline"`
	AdCTA        string   `json:"ad_cta" yaml:"ad_cta"`
	PainPoints   []string `json:"pain_points" yaml:"pain_points"`
	BudgetRange  string   `json:"budget_range" yaml:"budget_range"`
	Timeline     string   `json:"timeline" yaml:"timeline"`
	Found        bool     `json:"found" yaml:"-"`
}

// NotFoundContext returns the empty context for an unknown id.
func NotFoundContext(contextID string) LeadContext {
	return LeadContext{ContextID: contextID}
}

// BriefingRequest is the inbound webhook payload.
type BriefingRequest struct {
	CompanyDomain string `json:"company_domain"`
	ContextID     string `json:"context_id"`
	LeadID        string `json:"lead_id"`
}
