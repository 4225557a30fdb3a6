package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"introxpection-quiz/internal/domain"
	_ "modernc.org/sqlite" // driver: sqlite
)

const schema = `
CREATE TABLE IF NOT EXISTS quiz_stats (
    quiz_id           TEXT NOT NULL,
    profile_id        TEXT NOT NULL,
    completions       INTEGER NOT NULL DEFAULT 0,
    last_completed_at TEXT,
    PRIMARY KEY (quiz_id, profile_id)
);`

// StatsStore keeps local completion statistics in a SQLite file, the
// terminal counterpart of the server's Redis/Postgres stores.
type StatsStore struct {
	db *sql.DB
}

// DefaultPath is where the play command keeps its statistics.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "introxpection-stats.db"
	}
	return filepath.Join(dir, "introxpection", "stats.db")
}

// Open opens (and creates if needed) the database at path.
func Open(ctx context.Context, path string) (*StatsStore, error) {
	if path == "" {
		path = DefaultPath()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create stats dir: %w", err)
		}
	}
	dsn := "file:" + path + "?mode=rwc&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &StatsStore{db: db}, nil
}

func (s *StatsStore) Record(ctx context.Context, c domain.Completion) error {
	completedAt := c.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_stats (quiz_id, profile_id, completions, last_completed_at) VALUES (?, ?, 1, ?)
		ON CONFLICT (quiz_id, profile_id) DO UPDATE SET
			completions = completions + 1,
			last_completed_at = excluded.last_completed_at`,
		c.QuizID, c.ProfileID, completedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

func (s *StatsStore) Stats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	stats := domain.QuizStats{QuizID: quizID, Results: make(map[string]int64)}
	rows, err := s.db.QueryContext(ctx, `SELECT profile_id, completions FROM quiz_stats WHERE quiz_id = ? ORDER BY profile_id`, quizID)
	if err != nil {
		return stats, fmt.Errorf("load stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var profileID string
		var n int64
		if err := rows.Scan(&profileID, &n); err != nil {
			return stats, err
		}
		stats.Results[profileID] = n
		stats.Completions += n
	}
	return stats, rows.Err()
}

// QuizIDs lists every quiz with at least one recorded completion.
func (s *StatsStore) QuizIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT quiz_id FROM quiz_stats ORDER BY quiz_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *StatsStore) Close() error {
	return s.db.Close()
}
