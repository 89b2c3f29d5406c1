package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStore_ConcurrentUpserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads_db.json")
	s := NewJSON(path)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Upsert(ctx, fmt.Sprintf("lead_%02d", i), sampleBriefing("p"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

func TestJSONStore_ConcurrentReadersNeverSeeTornFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads_db.json")
	s := NewJSON(path)
	ctx := context.Background()
	_, err := s.Upsert(ctx, "seed", sampleBriefing("seed"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 30 {
			_, err := s.Upsert(ctx, fmt.Sprintf("lead_%d", i), sampleBriefing("p"))
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for range 60 {
			_, err := s.List(ctx)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
}

func TestJSONStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewJSON(filepath.Join(dir, "leads_db.json"))
	_, err := s.Upsert(context.Background(), "lead_1", sampleBriefing("p"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "leads_db.json", entries[0].Name())
}

// leadsFileSeed is a leads file as the earlier service wrote it: the
// briefing is an encoded string and timestamps carry no zone.
const leadsFileSeed = `[
  {
    "lead_id": "lead_123",
    "name": "Jane Doe",
    "company": "Acme",
    "email": "jane@acme.com",
    "phone": "+60 12-345 6789",
    "status": "Briefing Generated",
    "ai_briefing": "{\"company_profile\": \"Old profile\", \"key_updates\": [], \"lead_angle\": \"x\", \"conversation_starters\": [], \"potential_objections\": []}",
    "created_date": "2025-01-15T10:30:00.123456",
    "last_updated": "2025-01-15T10:30:00.123456"
  },
  {
    "lead_id": "lead_456",
    "name": "Sam Lee",
    "status": "New",
    "created_date": "2025-01-16T08:00:00",
    "last_updated": "2025-01-16T08:00:00"
  }
]`

func TestJSONStore_ReadsLegacyLeadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads_db.json")
	require.NoError(t, os.WriteFile(path, []byte(leadsFileSeed), 0o644))

	s := NewJSON(path)
	records, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "lead_123", records[0].LeadID)
	require.True(t, records[0].HasBriefing())
	assert.Equal(t, "Old profile", records[0].Briefing.CompanyProfile)
	assert.True(t, records[0].CreatedAt.Equal(time.Date(2025, 1, 15, 10, 30, 0, 123456000, time.Local)))

	assert.False(t, records[1].HasBriefing())
	assert.True(t, records[1].UpdatedAt.Equal(time.Date(2025, 1, 16, 8, 0, 0, 0, time.Local)))
}

func TestJSONStore_UpsertIntoLegacyLeadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads_db.json")
	require.NoError(t, os.WriteFile(path, []byte(leadsFileSeed), 0o644))

	s := NewJSON(path)
	ctx := context.Background()

	rec, err := s.Upsert(ctx, "lead_123", sampleBriefing("Acme"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "jane@acme.com", rec.Email)
	assert.Equal(t, "Briefing Generated", rec.Status)
	assert.True(t, rec.CreatedAt.Equal(time.Date(2025, 1, 15, 10, 30, 0, 123456000, time.Local)))
	assert.True(t, rec.UpdatedAt.After(rec.CreatedAt))

	other, err := s.Get(ctx, "lead_456")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.False(t, other.HasBriefing())
	assert.Equal(t, "New", other.Status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 2)

	assert.Equal(t, "+60 12-345 6789", raw[0]["phone"])
	encoded, ok := raw[0]["ai_briefing"].(string)
	require.True(t, ok, "ai_briefing stays an encoded string")
	var b map[string]any
	require.NoError(t, json.Unmarshal([]byte(encoded), &b))
	assert.Equal(t, "Acme", b["company_profile"])
	assert.NotContains(t, raw[1], "ai_briefing")
}

func TestParseStamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: ""},
		{in: "2026-01-02T03:04:05Z", want: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{in: "2026-01-02T03:04:05.5+08:00", want: time.Date(2026, 1, 1, 19, 4, 5, 500000000, time.UTC)},
		{in: "2025-01-15T10:30:00.123456", want: time.Date(2025, 1, 15, 10, 30, 0, 123456000, time.Local)},
		{in: "2025-01-15 10:30:00", want: time.Date(2025, 1, 15, 10, 30, 0, 0, time.Local)},
		{in: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := parseStamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestDecodeBriefing(t *testing.T) {
	t.Parallel()

	b, err := decodeBriefing(json.RawMessage(`{"company_profile":"inline"}`))
	require.NoError(t, err)
	assert.Equal(t, "inline", b.CompanyProfile)

	b, err = decodeBriefing(json.RawMessage(`"{\"company_profile\":\"encoded\"}"`))
	require.NoError(t, err)
	assert.Equal(t, "encoded", b.CompanyProfile)

	for _, empty := range []string{`null`, `""`, `"  "`} {
		b, err = decodeBriefing(json.RawMessage(empty))
		require.NoError(t, err)
		assert.Nil(t, b, empty)
	}

	_, err = decodeBriefing(json.RawMessage(`"not json"`))
	assert.Error(t, err)
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads_db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewJSON(path)
	_, err := s.Upsert(context.Background(), "lead_1", sampleBriefing("p"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json store: decode")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestJSONStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads_db.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	records, err := NewJSON(path).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestJSONStore_CancelledContext(t *testing.T) {
	s := NewJSON(filepath.Join(t.TempDir(), "leads_db.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Upsert(ctx, "lead_1", sampleBriefing("p"))
	assert.Error(t, err)
}
