package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/briefing-service/internal/db"
	"github.com/sells-group/briefing-service/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS briefings (
	lead_id    TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	company    TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	briefing   TEXT,
	status     TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// upsertConfig keeps created_at from the first write.
var upsertConfig = db.UpsertConfig{
	Table:        "briefings",
	Columns:      []string{"lead_id", "briefing", "status", "created_at", "updated_at"},
	ConflictKeys: []string{"lead_id"},
	UpdateCols:   []string{"briefing", "status", "updated_at"},
}

const selectBriefing = `SELECT lead_id, name, company, email, briefing, status, created_at, updated_at FROM briefings`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Upsert(ctx context.Context, leadID string, b model.Briefing) (*model.BriefingRecord, error) {
	query, err := db.UpsertSQL(upsertConfig, db.Question)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build upsert")
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal briefing")
	}

	ts := now()
	if _, err := s.db.ExecContext(ctx, query, leadID, string(data), model.BriefingStatus, ts, ts); err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert briefing %s", leadID)
	}

	rec, err := s.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, eris.Errorf("sqlite: briefing %s missing after upsert", leadID)
	}
	return rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, leadID string) (*model.BriefingRecord, error) {
	row := s.db.QueryRowContext(ctx, selectBriefing+` WHERE lead_id = ?`, leadID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get briefing %s", leadID)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.BriefingRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectBriefing+` ORDER BY lead_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list briefings")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.BriefingRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan briefing")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate briefings")
}

// scanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*model.BriefingRecord, error) {
	var (
		rec  model.BriefingRecord
		data []byte
	)
	if err := sc.Scan(&rec.LeadID, &rec.Name, &rec.Company, &rec.Email, &data, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		var b model.Briefing
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, eris.Wrap(err, "decode briefing")
		}
		rec.Briefing = &b
	}
	return &rec, nil
}
