package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/pkg/salesforce"
)

const (
	minDomainLen = 3
	maxDomainLen = 100
	maxIDLen     = 50
)

// Validate checks and normalizes an inbound request. When crm is true the
// lead id must also look like a Salesforce record Id. Failures are
// *model.Error of kind validation_error.
func Validate(req model.BriefingRequest, crm bool) (model.BriefingRequest, error) {
	out := model.BriefingRequest{
		CompanyDomain: NormalizeDomain(req.CompanyDomain),
		ContextID:     strings.TrimSpace(req.ContextID),
		LeadID:        strings.TrimSpace(req.LeadID),
	}

	var problems []string
	switch n := utf8.RuneCountInString(out.CompanyDomain); {
	case n == 0:
		problems = append(problems, "company_domain is required")
	case n < minDomainLen || n > maxDomainLen:
		problems = append(problems, "company_domain must be 3-100 characters")
	case !strings.Contains(out.CompanyDomain, "."):
		problems = append(problems, "company_domain is not a valid domain")
	case strings.ContainsAny(out.CompanyDomain, " \t\n"):
		problems = append(problems, "company_domain must not contain whitespace")
	}

	switch n := utf8.RuneCountInString(out.ContextID); {
	case n == 0:
		problems = append(problems, "context_id is required")
	case n > maxIDLen:
		problems = append(problems, "context_id must be at most 50 characters")
	}

	switch n := utf8.RuneCountInString(out.LeadID); {
	case n == 0:
		problems = append(problems, "lead_id is required")
	case n > maxIDLen:
		problems = append(problems, "lead_id must be at most 50 characters")
	case crm && !salesforce.IsValidID(out.LeadID):
		problems = append(problems, "lead_id must be a 15 or 18 character Salesforce Id")
	}

	if len(problems) > 0 {
		return out, model.NewError(model.KindValidation, "invalid request: "+strings.Join(problems, "; "), nil)
	}
	return out, nil
}

// NormalizeDomain lower-cases d and strips the scheme and any trailing slash.
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimRight(d, "/")
}
