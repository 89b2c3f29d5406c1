package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/briefing-service/internal/model"
)

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"Acme.com":              "acme.com",
		"  https://Acme.com/  ": "acme.com",
		"http://www.acme.io":    "www.acme.io",
		"acme":                  "acme",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDomain(in), in)
	}
}

func TestValidate_OK(t *testing.T) {
	out, err := Validate(model.BriefingRequest{
		CompanyDomain: " HTTPS://Acme.com ",
		ContextID:     " ad_001_pos ",
		LeadID:        "lead_123",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "acme.com", out.CompanyDomain)
	assert.Equal(t, "ad_001_pos", out.ContextID)
	assert.Equal(t, "lead_123", out.LeadID)
}

func TestValidate_Errors(t *testing.T) {
	ok := model.BriefingRequest{CompanyDomain: "acme.com", ContextID: "ctx", LeadID: "lead"}

	tests := []struct {
		name    string
		mutate  func(r *model.BriefingRequest)
		crm     bool
		wantMsg string
	}{
		{"missing domain", func(r *model.BriefingRequest) { r.CompanyDomain = "  " }, false, "company_domain is required"},
		{"short domain", func(r *model.BriefingRequest) { r.CompanyDomain = "a." }, false, "3-100"},
		{"long domain", func(r *model.BriefingRequest) { r.CompanyDomain = strings.Repeat("a", 98) + ".com" }, false, "3-100"},
		{"no dot", func(r *model.BriefingRequest) { r.CompanyDomain = "localhost" }, false, "not a valid domain"},
		{"space", func(r *model.BriefingRequest) { r.CompanyDomain = "ac me.com" }, false, "whitespace"},
		{"missing context", func(r *model.BriefingRequest) { r.ContextID = "" }, false, "context_id is required"},
		{"long context", func(r *model.BriefingRequest) { r.ContextID = strings.Repeat("c", 51) }, false, "context_id must be at most 50"},
		{"missing lead", func(r *model.BriefingRequest) { r.LeadID = "" }, false, "lead_id is required"},
		{"long lead", func(r *model.BriefingRequest) { r.LeadID = strings.Repeat("l", 51) }, false, "lead_id must be at most 50"},
		{"crm lead id", func(r *model.BriefingRequest) { r.LeadID = "lead_123" }, true, "Salesforce Id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ok
			tt.mutate(&req)
			_, err := Validate(req, tt.crm)
			require.Error(t, err)
			assert.Equal(t, model.KindValidation, model.KindOf(err))
			assert.Contains(t, model.PublicMessage(err), tt.wantMsg)
		})
	}
}

func TestValidate_CRMAcceptsSalesforceID(t *testing.T) {
	_, err := Validate(model.BriefingRequest{CompanyDomain: "acme.com", ContextID: "c", LeadID: "00Q5g00000AbCdEFGH"}, true)
	assert.NoError(t, err)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	_, err := Validate(model.BriefingRequest{}, false)
	require.Error(t, err)
	msg := model.PublicMessage(err)
	assert.Contains(t, msg, "company_domain is required")
	assert.Contains(t, msg, "context_id is required")
	assert.Contains(t, msg, "lead_id is required")
}
