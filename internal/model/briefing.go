package model

import "time"

// Briefing field keys, in the order the model is asked to produce them.
const (
	FieldCompanyProfile       = "company_profile"
	FieldKeyUpdates           = "key_updates"
	FieldLeadAngle            = "lead_angle"
	FieldConversationStarters = "conversation_starters"
	FieldPotentialObjections  = "potential_objections"
)

// BriefingFields lists every required briefing key.
var BriefingFields = []string{
	FieldCompanyProfile,
	FieldKeyUpdates,
	FieldLeadAngle,
	FieldConversationStarters,
	FieldPotentialObjections,
}

// Briefing is the five-field pre-call artifact produced by the LLM.
type Briefing struct {
	CompanyProfile       string   `json:"company_profile"`
	KeyUpdates           []string `json:"key_updates"`
	LeadAngle            string   `json:"lead_angle"`
	ConversationStarters []string `json:"conversation_starters"`
	PotentialObjections  []string `json:"potential_objections"`
}

// Target identifies where a briefing was persisted.
type Target string

const (
	TargetCRM   Target = "CRM"
	TargetLocal Target = "LOCAL"
)

// PersistenceResult reports the outcome of one persistence attempt.
type PersistenceResult struct {
	Target  Target `json:"target"`
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

// BriefingStatus is the lead status written alongside a stored briefing.
const BriefingStatus = "Briefing Generated"

// BriefingRecord is a briefing stored in the local store, keyed by lead id.
// Name, Company and Email are carried through from pre-seeded lead files.
type BriefingRecord struct {
	LeadID    string    `json:"lead_id"`
	Name      string    `json:"name,omitempty"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email,omitempty"`
	Briefing  *Briefing `json:"ai_briefing,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_date"`
	UpdatedAt time.Time `json:"last_updated"`
}

// HasBriefing reports whether the record carries a generated briefing.
func (r BriefingRecord) HasBriefing() bool {
	return r.Briefing != nil
}
