package memory

import (
	"context"
	"sync"

	"introxpection-quiz/internal/domain"
)

// StatsStore keeps completion counts in process.
type StatsStore struct {
	mu    sync.Mutex
	stats map[string]*domain.QuizStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[string]*domain.QuizStats)}
}

func (s *StatsStore) Record(_ context.Context, c domain.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[c.QuizID]
	if !ok {
		st = &domain.QuizStats{QuizID: c.QuizID, Results: make(map[string]int64)}
		s.stats[c.QuizID] = st
	}
	st.Completions++
	st.Results[c.ProfileID]++
	return nil
}

func (s *StatsStore) Stats(_ context.Context, quizID string) (domain.QuizStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := domain.QuizStats{QuizID: quizID, Results: make(map[string]int64)}
	if st, ok := s.stats[quizID]; ok {
		out.Completions = st.Completions
		for id, n := range st.Results {
			out.Results[id] = n
		}
	}
	return out, nil
}
