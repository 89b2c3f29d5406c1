package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/briefing-service/internal/db"
	"github.com/sells-group/briefing-service/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a small connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS briefings (
	lead_id    TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	company    TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	briefing   JSONB,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, leadID string, b model.Briefing) (*model.BriefingRecord, error) {
	query, err := db.UpsertSQL(upsertConfig, db.Dollar)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build upsert")
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal briefing")
	}

	ts := now()
	if _, err := s.pool.Exec(ctx, query, leadID, data, model.BriefingStatus, ts, ts); err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert briefing %s", leadID)
	}

	rec, err := s.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, eris.Errorf("postgres: briefing %s missing after upsert", leadID)
	}
	return rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, leadID string) (*model.BriefingRecord, error) {
	row := s.pool.QueryRow(ctx, selectBriefing+` WHERE lead_id = $1`, leadID)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get briefing %s", leadID)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]model.BriefingRecord, error) {
	rows, err := s.pool.Query(ctx, selectBriefing+` ORDER BY lead_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list briefings")
	}
	defer rows.Close()

	out := []model.BriefingRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan briefing")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate briefings")
}
