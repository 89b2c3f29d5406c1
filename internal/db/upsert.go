package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig defines the parameters for a single-row upsert.
type UpsertConfig struct {
	Table        string   // target table (e.g., "briefings")
	Columns      []string // all columns being inserted
	ConflictKeys []string // columns forming the unique constraint
	UpdateCols   []string // columns to update on conflict; nil = all non-conflict columns
}

// Placeholder renders the bind parameter for the i-th column (1-based).
type Placeholder func(i int) string

// Dollar renders Postgres-style $n parameters.
func Dollar(i int) string { return fmt.Sprintf("$%d", i) }

// Question renders SQLite-style ? parameters.
func Question(int) string { return "?" }

// UpsertSQL builds INSERT ... VALUES (...) ON CONFLICT (keys) DO UPDATE SET ...
// The statement is valid for both Postgres and SQLite.
func UpsertSQL(cfg UpsertConfig, ph Placeholder) (string, error) {
	if len(cfg.Columns) == 0 {
		return "", eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return "", eris.New("db: upsert: no conflict keys specified")
	}

	updateCols := cfg.UpdateCols
	if updateCols == nil {
		conflictSet := make(map[string]bool, len(cfg.ConflictKeys))
		for _, k := range cfg.ConflictKeys {
			conflictSet[k] = true
		}
		for _, c := range cfg.Columns {
			if !conflictSet[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	params := make([]string, len(cfg.Columns))
	for i := range cfg.Columns {
		params[i] = ph(i + 1)
	}

	var setClauses []string
	for _, col := range updateCols {
		id := pgx.Identifier{col}.Sanitize()
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", id, id))
	}

	conflict := "DO NOTHING"
	if len(setClauses) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(setClauses, ", ")
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		sanitizeTable(cfg.Table),
		quoteAndJoin(cfg.Columns),
		strings.Join(params, ", "),
		quoteAndJoin(cfg.ConflictKeys),
		conflict,
	), nil
}

// sanitizeTable handles schema-qualified table names like "public.briefings".
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
