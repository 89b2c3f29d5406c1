package briefing

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-service/internal/model"
)

// cleanJSON strips code fences and any prose around the outermost JSON object.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// Parse decodes model output into a Briefing. Every required key must be
// present, non-null and of the right shape.
func Parse(raw string) (*model.Briefing, error) {
	cleaned := cleanJSON(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, eris.Wrap(err, "briefing: decode response")
	}

	var (
		b    model.Briefing
		errs []string
	)
	decodeString := func(key string, dst *string) {
		v, ok := fields[key]
		if !ok || isNull(v) {
			errs = append(errs, key+" missing")
			return
		}
		if err := json.Unmarshal(v, dst); err != nil {
			errs = append(errs, key+" is not a string")
		}
	}
	decodeList := func(key string, dst *[]string) {
		v, ok := fields[key]
		if !ok || isNull(v) {
			errs = append(errs, key+" missing")
			return
		}
		// Pointers expose null elements, which []string would turn into "".
		var items []*string
		if err := json.Unmarshal(v, &items); err != nil || slices.Contains(items, nil) {
			errs = append(errs, key+" is not an array of strings")
			return
		}
		list := make([]string, len(items))
		for i, item := range items {
			list[i] = *item
		}
		*dst = list
	}

	decodeString(model.FieldCompanyProfile, &b.CompanyProfile)
	decodeList(model.FieldKeyUpdates, &b.KeyUpdates)
	decodeString(model.FieldLeadAngle, &b.LeadAngle)
	decodeList(model.FieldConversationStarters, &b.ConversationStarters)
	decodeList(model.FieldPotentialObjections, &b.PotentialObjections)

	if len(errs) > 0 {
		return nil, eris.Errorf("briefing: invalid response: %s", strings.Join(errs, ", "))
	}
	return &b, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
