package postgres

import (
	"context"
	"fmt"
	"time"

	"introxpection-quiz/internal/domain"
	"github.com/uptrace/bun"
)

type quizStat struct {
	bun.BaseModel `bun:"table:quiz_stats,alias:qs"`

	QuizID          string    `bun:"quiz_id,pk"`
	ProfileID       string    `bun:"profile_id,pk"`
	Completions     int64     `bun:"completions,notnull"`
	LastCompletedAt time.Time `bun:"last_completed_at,nullzero"`
}

// StatsStore keeps per-profile completion counts in the quiz_stats table.
type StatsStore struct {
	db *bun.DB
}

func NewStatsStore(db *bun.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) Record(ctx context.Context, c domain.Completion) error {
	row := &quizStat{
		QuizID:          c.QuizID,
		ProfileID:       c.ProfileID,
		Completions:     1,
		LastCompletedAt: c.CompletedAt,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (quiz_id, profile_id) DO UPDATE").
		Set("completions = ?TableAlias.completions + 1").
		Set("last_completed_at = EXCLUDED.last_completed_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

func (s *StatsStore) Stats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	stats := domain.QuizStats{QuizID: quizID, Results: make(map[string]int64)}

	var rows []quizStat
	err := s.db.NewSelect().
		Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("profile_id").
		Scan(ctx)
	if err != nil {
		return stats, fmt.Errorf("load stats: %w", err)
	}
	for _, row := range rows {
		stats.Results[row.ProfileID] = row.Completions
		stats.Completions += row.Completions
	}
	return stats, nil
}
