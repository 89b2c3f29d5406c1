package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/model"
)

// JSONStore keeps every record in one JSON array file, in the layout
// described on fileRecord. Writes are serialized by a mutex and land via
// temp file + rename, so readers never see a torn file.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSON creates a JSONStore backed by the file at path.
func NewJSON(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Migrate is a no-op; the file is created on first write.
func (s *JSONStore) Migrate(context.Context) error { return nil }

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) Upsert(ctx context.Context, leadID string, b model.Briefing) (*model.BriefingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "json store: upsert")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}

	ts := now()
	var rec *model.BriefingRecord
	for i := range records {
		if records[i].LeadID == leadID {
			rec = &records[i].BriefingRecord
			rec.Briefing = &b
			rec.Status = model.BriefingStatus
			rec.UpdatedAt = ts
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = ts
			}
			break
		}
	}
	if rec == nil {
		records = append(records, fileRecord{BriefingRecord: newRecord(leadID, b, ts)})
		rec = &records[len(records)-1].BriefingRecord
	}
	out := *rec

	if err := s.write(records); err != nil {
		return nil, err
	}

	zap.L().Debug("json store: upserted briefing",
		zap.String("lead_id", leadID),
		zap.Int("total_records", len(records)),
	)
	return &out, nil
}

func (s *JSONStore) Get(ctx context.Context, leadID string) (*model.BriefingRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].LeadID == leadID {
			return &records[i], nil
		}
	}
	return nil, nil
}

// List reads a snapshot without taking the write lock.
func (s *JSONStore) List(ctx context.Context) ([]model.BriefingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "json store: list")
	}
	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	records := make([]model.BriefingRecord, len(entries))
	for i := range entries {
		records[i] = entries[i].BriefingRecord
	}
	slices.SortStableFunc(records, func(a, b model.BriefingRecord) int {
		return strings.Compare(a.LeadID, b.LeadID)
	})
	return records, nil
}

// read loads the file. A missing or empty file is an empty store.
func (s *JSONStore) read() ([]fileRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []fileRecord{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "json store: read %s", s.path)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []fileRecord{}, nil
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "json store: decode %s", s.path)
	}
	if records == nil {
		records = []fileRecord{}
	}
	return records, nil
}

func (s *JSONStore) write(records []fileRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "json store: encode")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "json store: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "json store: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "json store: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "json store: close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return eris.Wrapf(err, "json store: rename to %s", s.path)
	}
	return nil
}
