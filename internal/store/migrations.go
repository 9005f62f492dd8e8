package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// migration is one step in the ordered schema history. Steps are applied
// exactly once, in version order, each inside its own transaction, with
// the applied version recorded in schema_migrations. Schema evolution is
// additive only: new nullable columns, never renames, so older history
// rows stay readable.
type migration struct {
	version int
	stmt    string
}

var migrations = []migration{
	{1, `
CREATE TABLE IF NOT EXISTS trends (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    name             TEXT NOT NULL UNIQUE COLLATE NOCASE,
    summary          TEXT NOT NULL DEFAULT '',
    score            INTEGER NOT NULL DEFAULT 0,
    stage            TEXT NOT NULL DEFAULT '',
    examples         TEXT NOT NULL DEFAULT '[]',
    url              TEXT NOT NULL DEFAULT '',
    snippet          TEXT NOT NULL DEFAULT '',
    views            TEXT NOT NULL DEFAULT '',
    likes            TEXT NOT NULL DEFAULT '',
    comments         TEXT NOT NULL DEFAULT '',
    timestamp        DATETIME,
    leaderboard_rank INTEGER
);

CREATE INDEX IF NOT EXISTS idx_trends_score ON trends(score);
CREATE INDEX IF NOT EXISTS idx_trends_stage ON trends(stage);
`},
	{2, `
CREATE TABLE IF NOT EXISTS trend_history (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    name             TEXT NOT NULL,
    timestamp        DATETIME NOT NULL,
    score            INTEGER NOT NULL,
    stage            TEXT NOT NULL,
    views            TEXT NOT NULL DEFAULT '',
    likes            TEXT NOT NULL DEFAULT '',
    comments         TEXT NOT NULL DEFAULT '',
    leaderboard_rank INTEGER
);

CREATE INDEX IF NOT EXISTS idx_history_name ON trend_history(name);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON trend_history(timestamp);
`},
	{3, `
ALTER TABLE trends ADD COLUMN alerted BOOLEAN NOT NULL DEFAULT 0;
`},
}

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			m.version, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
