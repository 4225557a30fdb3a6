package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"introxpection-quiz/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizLoader loads quiz definitions stored as JSONB in Postgres.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Definition, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Definition{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Definition{}, fmt.Errorf("load quiz: %w", err)
	}
	var def domain.Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return domain.Definition{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return def, nil
}

// ListQuizzes returns a catalog entry for every stored quiz.
func (l *QuizLoader) ListQuizzes(ctx context.Context) ([]domain.Summary, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	out := []domain.Summary{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		var def domain.Definition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("unmarshal quiz: %w", err)
		}
		out = append(out, def.Summarize())
	}
	return out, rows.Err()
}

// SaveQuiz inserts or replaces a definition.
func (l *QuizLoader) SaveQuiz(ctx context.Context, def domain.Definition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO quizzes (id, title, data, updated_at) VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, data=EXCLUDED.data, updated_at=now()`,
		def.ID, def.Title, string(data))
	if err != nil {
		return fmt.Errorf("save quiz %s: %w", def.ID, err)
	}
	return nil
}
