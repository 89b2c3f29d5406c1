// Package store persists generated briefings locally when no CRM is configured.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-service/internal/config"
	"github.com/sells-group/briefing-service/internal/model"
)

// Store defines the persistence interface for briefing records.
type Store interface {
	// Upsert writes the briefing for leadID, creating the record if needed.
	Upsert(ctx context.Context, leadID string, b model.Briefing) (*model.BriefingRecord, error)
	// Get returns the record for leadID, or nil when there is none.
	Get(ctx context.Context, leadID string) (*model.BriefingRecord, error)
	// List returns every record ordered by lead id.
	List(ctx context.Context) ([]model.BriefingRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// now is the clock used for record timestamps.
var now = func() time.Time { return time.Now().UTC() }

// Open builds the Store selected by store.driver and migrates it.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "json", "":
		s = NewJSON(cfg.Path)
	case "sqlite":
		s, err = NewSQLite(cfg.Path)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// newRecord builds the record for a first write.
func newRecord(leadID string, b model.Briefing, ts time.Time) model.BriefingRecord {
	return model.BriefingRecord{
		LeadID:    leadID,
		Briefing:  &b,
		Status:    model.BriefingStatus,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}
