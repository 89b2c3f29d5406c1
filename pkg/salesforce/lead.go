package salesforce

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead represents the Salesforce Lead fields the briefing service reads.
type Lead struct {
	ID      string `json:"Id" salesforce:"Id"`
	Name    string `json:"Name" salesforce:"Name"`
	Company string `json:"Company" salesforce:"Company"`
	Email   string `json:"Email" salesforce:"Email"`
	Website string `json:"Website" salesforce:"Website"`
	Status  string `json:"Status" salesforce:"Status"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{"Id", "Name", "Company", "Email", "Website", "Status"}

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9]{15}([a-zA-Z0-9]{3})?$`)

// IsValidID reports whether id has the shape of a 15- or 18-character record Id.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}

// FindLeadByID queries sObject (normally "Lead") for a record by Id.
// Returns nil if no lead is found.
func FindLeadByID(ctx context.Context, c Client, sObject, id string) (*Lead, error) {
	if !IsValidID(id) {
		return nil, eris.Errorf("sf: invalid record id %q", id)
	}
	soql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE Id = '%s' LIMIT 1",
		strings.Join(leadFields, ", "),
		sObject,
		escapeSoql(id),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find %s by id %s", sObject, id))
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// UpdateLeadField writes a single field on a record.
func UpdateLeadField(ctx context.Context, c Client, sObject, id, field, value string) error {
	if id == "" {
		return eris.New("sf: record id is required")
	}
	if field == "" {
		return eris.New("sf: field name is required")
	}
	if err := c.UpdateOne(ctx, sObject, id, map[string]any{field: value}); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update %s field %s", sObject, field))
	}
	return nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
