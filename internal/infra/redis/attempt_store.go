package redis

import (
	"context"
	"sync"
	"time"

	"introxpection-quiz/internal/app"
	"github.com/redis/go-redis/v9"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Notes:
//   - Engines live in a local map; they are owned by the connection that
//     plays them and never leave the process.
//   - Redis holds a liveness marker per attempt and a set of attempt ids per
//     quiz, so Active counts attempts across instances.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Register(attempt *app.Attempt) {
	s.mu.Lock()
	s.attempts[attempt.ID] = attempt
	s.mu.Unlock()

	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(attempt.ID), attempt.QuizID, s.ttl)
	pipe.SAdd(ctx, s.quizKey(attempt.QuizID), attempt.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.quizKey(attempt.QuizID), s.ttl)
	}
	// best-effort liveness marker
	_, _ = pipe.Exec(ctx)
}

func (s *AttemptStore) Get(attemptID string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	return attempt, ok
}

func (s *AttemptStore) Remove(attemptID string) {
	s.mu.Lock()
	attempt, ok := s.attempts[attemptID]
	delete(s.attempts, attemptID)
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(attemptID))
	pipe.SRem(ctx, s.quizKey(attempt.QuizID), attemptID)
	_, _ = pipe.Exec(ctx)
}

// Touch extends the liveness marker of a local attempt and the quiz set
// that lists it.
func (s *AttemptStore) Touch(attemptID string) {
	if s.ttl <= 0 {
		return
	}
	s.mu.RLock()
	attempt, ok := s.attempts[attemptID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(attemptID), attempt.QuizID, s.ttl)
	pipe.SAdd(ctx, s.quizKey(attempt.QuizID), attemptID)
	pipe.Expire(ctx, s.quizKey(attempt.QuizID), s.ttl)
	_, _ = pipe.Exec(ctx)
}

// Active counts attempts whose liveness marker has not expired. Stale ids
// are pruned from the quiz set as they are found.
func (s *AttemptStore) Active(quizID string) int {
	ctx := context.Background()
	ids, err := s.client.SMembers(ctx, s.quizKey(quizID)).Result()
	if err != nil {
		return s.localActive(quizID)
	}
	n := 0
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, s.key(id)).Result()
		if err != nil {
			continue
		}
		if exists == 0 {
			_ = s.client.SRem(ctx, s.quizKey(quizID), id).Err()
			continue
		}
		n++
	}
	return n
}

func (s *AttemptStore) localActive(quizID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, attempt := range s.attempts {
		if attempt.QuizID == quizID {
			n++
		}
	}
	return n
}

func (s *AttemptStore) key(attemptID string) string {
	return "quiz:attempt:" + attemptID
}

func (s *AttemptStore) quizKey(quizID string) string {
	return "quiz:" + quizID + ":attempts"
}
