package store

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-service/internal/model"
)

// Keys of the leads file that map onto model.BriefingRecord.
const (
	keyLeadID      = "lead_id"
	keyName        = "name"
	keyCompany     = "company"
	keyEmail       = "email"
	keyStatus      = "status"
	keyBriefing    = "ai_briefing"
	keyCreatedDate = "created_date"
	keyLastUpdated = "last_updated"
)

// naiveLayouts parse ISO timestamps written without a zone, as Python's
// datetime.isoformat() and str() produce them. They are read as local time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// fileRecord is one entry of the leads file. ai_briefing is stored as an
// encoded JSON string, the shape sales tooling reads; an inline object is
// accepted too. Keys the service does not model survive a rewrite in extra.
type fileRecord struct {
	model.BriefingRecord
	extra map[string]json.RawMessage
}

func (r *fileRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var rec model.BriefingRecord
	for key, dst := range map[string]*string{
		keyLeadID:  &rec.LeadID,
		keyName:    &rec.Name,
		keyCompany: &rec.Company,
		keyEmail:   &rec.Email,
		keyStatus:  &rec.Status,
	} {
		v, err := takeString(raw, key)
		if err != nil {
			return err
		}
		*dst = v
	}

	for key, dst := range map[string]*time.Time{
		keyCreatedDate: &rec.CreatedAt,
		keyLastUpdated: &rec.UpdatedAt,
	} {
		s, err := takeString(raw, key)
		if err != nil {
			return err
		}
		ts, err := parseStamp(s)
		if err != nil {
			return eris.Wrapf(err, "%s", key)
		}
		*dst = ts
	}

	if v, ok := raw[keyBriefing]; ok {
		b, err := decodeBriefing(v)
		if err != nil {
			return eris.Wrap(err, keyBriefing)
		}
		rec.Briefing = b
		delete(raw, keyBriefing)
	}

	r.BriefingRecord = rec
	r.extra = nil
	if len(raw) > 0 {
		r.extra = raw
	}
	return nil
}

func (r fileRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.extra)+8)
	for k, v := range r.extra {
		out[k] = v
	}

	out[keyLeadID] = r.LeadID
	out[keyStatus] = r.Status
	for key, v := range map[string]string{keyName: r.Name, keyCompany: r.Company, keyEmail: r.Email} {
		if v != "" {
			out[key] = v
		}
	}
	if r.Briefing != nil {
		enc, err := json.Marshal(r.Briefing)
		if err != nil {
			return nil, err
		}
		out[keyBriefing] = string(enc)
	}
	if !r.CreatedAt.IsZero() {
		out[keyCreatedDate] = r.CreatedAt.Format(time.RFC3339Nano)
	}
	if !r.UpdatedAt.IsZero() {
		out[keyLastUpdated] = r.UpdatedAt.Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// takeString removes key from raw and decodes it. A missing key or null is "".
func takeString(raw map[string]json.RawMessage, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", nil
	}
	delete(raw, key)

	var s *string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", eris.Wrapf(err, "%s", key)
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

// parseStamp reads RFC 3339 or a zone-less ISO timestamp. "" is the zero time.
func parseStamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("unrecognized timestamp %q", s)
}

// decodeBriefing accepts an encoded JSON string, an inline object, or null.
func decodeBriefing(v json.RawMessage) (*model.Briefing, error) {
	v = bytes.TrimSpace(v)
	switch {
	case len(v) == 0 || bytes.Equal(v, []byte("null")):
		return nil, nil
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		v = []byte(s)
	}

	var b model.Briefing
	if err := json.Unmarshal(v, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
