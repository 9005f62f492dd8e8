package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Trend is the canonical, deduplicated row for one named topic. The name
// is unique case-insensitively; every upsert overwrites all collector
// fields (last write wins, no partial merge).
type Trend struct {
	ID              int64      `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Summary         string     `db:"summary" json:"summary"`
	Score           int        `db:"score" json:"score"`
	Stage           string     `db:"stage" json:"stage"`
	ExamplesJSON    string     `db:"examples" json:"-"`
	Examples        []string   `db:"-" json:"examples"`
	URL             string     `db:"url" json:"url"`
	Snippet         string     `db:"snippet" json:"snippet"`
	Views           string     `db:"views" json:"views"`
	Likes           string     `db:"likes" json:"likes"`
	Comments        string     `db:"comments" json:"comments"`
	Timestamp       *time.Time `db:"timestamp" json:"timestamp,omitempty"`
	LeaderboardRank *int       `db:"leaderboard_rank" json:"leaderboard_rank,omitempty"`
	Alerted         bool       `db:"alerted" json:"alerted"`
}

// HistorySample is one timestamped snapshot of a trend's derived
// score/stage. The table is append-only: a row per ingestion pass per
// trend, never updated, never deleted in normal operation. The name is a
// weak back-reference to trends, not an enforced foreign key.
type HistorySample struct {
	ID              int64      `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Timestamp       time.Time  `db:"timestamp" json:"timestamp"`
	Score           int        `db:"score" json:"score"`
	Stage           string     `db:"stage" json:"stage"`
	Views           string     `db:"views" json:"views"`
	Likes           string     `db:"likes" json:"likes"`
	Comments        string     `db:"comments" json:"comments"`
	LeaderboardRank *int       `db:"leaderboard_rank" json:"leaderboard_rank,omitempty"`
}

// Store is the persistence interface.
type Store interface {
	UpsertTrend(ctx context.Context, t *Trend) error
	GetTrend(ctx context.Context, name string) (*Trend, error)
	ListTrends(ctx context.Context) ([]Trend, error)
	MarkAlerted(ctx context.Context, name string) error

	AddHistorySample(ctx context.Context, s *HistorySample) error
	ListHistory(ctx context.Context, name string, since time.Time) ([]HistorySample, error)

	SeedSampleTrends(ctx context.Context) error
	Reset(ctx context.Context) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and applies pending migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertTrend inserts the trend or replaces every mutable field of the
// existing row with the same (case-insensitive) name. The single
// statement keeps the row transition atomic: a concurrent reader sees
// either the old row or the new one, never a half-written mix.
func (s *SQLiteStore) UpsertTrend(ctx context.Context, t *Trend) error {
	examplesJSON, _ := json.Marshal(t.Examples)
	if t.Examples == nil {
		examplesJSON = []byte("[]")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trends (name, summary, score, stage, examples, url, snippet, views, likes, comments, timestamp, leaderboard_rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			name = excluded.name,
			summary = excluded.summary,
			score = excluded.score,
			stage = excluded.stage,
			examples = excluded.examples,
			url = excluded.url,
			snippet = excluded.snippet,
			views = excluded.views,
			likes = excluded.likes,
			comments = excluded.comments,
			timestamp = excluded.timestamp,
			leaderboard_rank = excluded.leaderboard_rank
	`, t.Name, t.Summary, t.Score, t.Stage, string(examplesJSON), t.URL,
		t.Snippet, t.Views, t.Likes, t.Comments, t.Timestamp, t.LeaderboardRank)
	if err != nil {
		return fmt.Errorf("upsert trend %q: %w", t.Name, err)
	}
	return nil
}

// GetTrend returns the trend with the given name, or nil if absent.
// Matching is case-insensitive, same as the uniqueness constraint.
func (s *SQLiteStore) GetTrend(ctx context.Context, name string) (*Trend, error) {
	var t Trend
	err := s.db.GetContext(ctx, &t, "SELECT * FROM trends WHERE name = ? COLLATE NOCASE", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trend %q: %w", name, err)
	}
	json.Unmarshal([]byte(t.ExamplesJSON), &t.Examples)
	return &t, nil
}

// ListTrends returns every trend row in storage order.
func (s *SQLiteStore) ListTrends(ctx context.Context) ([]Trend, error) {
	var trends []Trend
	if err := s.db.SelectContext(ctx, &trends, "SELECT * FROM trends ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list trends: %w", err)
	}
	for i := range trends {
		json.Unmarshal([]byte(trends[i].ExamplesJSON), &trends[i].Examples)
	}
	return trends, nil
}

func (s *SQLiteStore) MarkAlerted(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE trends SET alerted = 1 WHERE name = ? COLLATE NOCASE", name)
	if err != nil {
		return fmt.Errorf("mark alerted %q: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) AddHistorySample(ctx context.Context, sample *HistorySample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trend_history (name, timestamp, score, stage, views, likes, comments, leaderboard_rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sample.Name, sample.Timestamp, sample.Score, sample.Stage,
		sample.Views, sample.Likes, sample.Comments, sample.LeaderboardRank)
	if err != nil {
		return fmt.Errorf("add history sample %q: %w", sample.Name, err)
	}
	return nil
}

func (s *SQLiteStore) ListHistory(ctx context.Context, name string, since time.Time) ([]HistorySample, error) {
	query := "SELECT * FROM trend_history WHERE name = ? COLLATE NOCASE"
	args := []any{name}

	if !since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, since)
	}
	query += " ORDER BY timestamp"

	var samples []HistorySample
	if err := s.db.SelectContext(ctx, &samples, query, args...); err != nil {
		return nil, fmt.Errorf("list history %q: %w", name, err)
	}
	return samples, nil
}

// sampleTrends is development fixture data for the dashboard.
var sampleTrends = []Trend{
	{
		Name:    "Lana Del Rey AI Covers",
		Score:   93,
		Stage:   "Exploding",
		Summary: "AI-generated Lana covers are going viral across TikTok and YouTube Shorts.",
		URL:     "https://tiktok.com/tag/lanaai",
	},
	{
		Name:    "Siren Eyes Makeup",
		Score:   78,
		Stage:   "Exploding",
		Summary: "The 'Siren Eyes' look is making a huge comeback with bold eyeliner tutorials.",
		URL:     "https://tiktok.com/tag/sireneyes",
	},
	{
		Name:    "Corecore Edits",
		Score:   65,
		Stage:   "Rising",
		Summary: "Moody, melancholic Corecore montages are gaining steam with Gen Z.",
		URL:     "https://tiktok.com/tag/corecore",
	},
}

// SeedSampleTrends wipes the trends table and inserts fixture rows.
func (s *SQLiteStore) SeedSampleTrends(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM trends"); err != nil {
		return fmt.Errorf("clear trends: %w", err)
	}
	for i := range sampleTrends {
		t := sampleTrends[i]
		if err := s.UpsertTrend(ctx, &t); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops both tables and the migration log, then rebuilds the
// schema from scratch. Destructive; intended for operator use only.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS trends",
		"DROP TABLE IF EXISTS trend_history",
		"DROP TABLE IF EXISTS schema_migrations",
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	if err := applyMigrations(s.db); err != nil {
		return fmt.Errorf("reset migrations: %w", err)
	}
	return nil
}
