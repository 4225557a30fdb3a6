package redis

import (
	"context"
	"errors"
	"strconv"

	"introxpection-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

// StatsStore counts completions in Redis:
//
//	INCR    quiz:{quizID}:completions
//	HINCRBY quiz:{quizID}:results {profileID} 1
type StatsStore struct {
	client *redis.Client
}

func NewStatsStore(client *redis.Client) *StatsStore {
	return &StatsStore{client: client}
}

func (s *StatsStore) Record(ctx context.Context, c domain.Completion) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, s.completionsKey(c.QuizID))
		pipe.HIncrBy(ctx, s.resultsKey(c.QuizID), c.ProfileID, 1)
		return nil
	})
	return err
}

func (s *StatsStore) Stats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	stats := domain.QuizStats{QuizID: quizID, Results: make(map[string]int64)}

	total, err := s.client.Get(ctx, s.completionsKey(quizID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return stats, err
	}
	stats.Completions = total

	results, err := s.client.HGetAll(ctx, s.resultsKey(quizID)).Result()
	if err != nil {
		return stats, err
	}
	for profileID, raw := range results {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		stats.Results[profileID] = n
	}
	return stats, nil
}

func (s *StatsStore) completionsKey(quizID string) string {
	return "quiz:" + quizID + ":completions"
}

func (s *StatsStore) resultsKey(quizID string) string {
	return "quiz:" + quizID + ":results"
}
