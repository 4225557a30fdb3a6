package memory

import (
	"sync"

	"introxpection-quiz/internal/app"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Register(attempt *app.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = attempt
}

func (s *AttemptStore) Get(attemptID string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	return attempt, ok
}

func (s *AttemptStore) Remove(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
}

// Touch is a no-op: in-process attempts live until Remove.
func (s *AttemptStore) Touch(string) {}

func (s *AttemptStore) Active(quizID string) int {
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
