package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"introxpection-quiz/internal/analytics"
	"introxpection-quiz/internal/domain"
	"introxpection-quiz/internal/engine"
)

// QuizRepository loads quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Definition, error)
}

// Catalog lists the quizzes a host can offer.
type Catalog interface {
	ListQuizzes(ctx context.Context) ([]domain.Summary, error)
}

// AttemptRepository tracks attempts that are being played (in-memory, Redis, etc).
type AttemptRepository interface {
	Register(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Remove(attemptID string)
	Active(quizID string) int
	// Touch marks a registered attempt as still being played.
	Touch(attemptID string)
}

// Attempt is one player's run through a quiz. The engine belongs to the
// host loop that created it.
type Attempt struct {
	ID        string
	QuizID    string
	StartedAt time.Time
	Engine    *engine.Engine
}

// PlayService starts and tracks quiz attempts.
type PlayService struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	stats    analytics.StatsReader
	reporter engine.Reporter
	catalog  Catalog
	newID    func() string
	now      func() time.Time
}

// NewPlayService wires the service. stats and reporter may be nil.
func NewPlayService(quizzes QuizRepository, attempts AttemptRepository, stats analytics.StatsReader, reporter engine.Reporter) *PlayService {
	return &PlayService{
		quizzes:  quizzes,
		attempts: attempts,
		stats:    stats,
		reporter: reporter,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// SetCatalog enables Quizzes.
func (s *PlayService) SetCatalog(c Catalog) {
	s.catalog = c
}

// Start loads the quiz and begins a new attempt rendered by view.
func (s *PlayService) Start(ctx context.Context, quizID string, view engine.View, notifier engine.Notifier) (*Attempt, error) {
	if quizID == "" {
		return nil, domain.ErrQuizNotFound
	}
	def, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	opts := []engine.Option{engine.WithAttemptID(id)}
	if view != nil {
		opts = append(opts, engine.WithView(view))
	}
	if notifier != nil {
		opts = append(opts, engine.WithNotifier(notifier))
	}
	if s.reporter != nil {
		opts = append(opts, engine.WithReporter(s.reporter))
	}
	eng, err := engine.New(def, opts...)
	if err != nil {
		return nil, err
	}

	attempt := &Attempt{
		ID:        id,
		QuizID:    def.ID,
		StartedAt: s.now(),
		Engine:    eng,
	}
	s.attempts.Register(attempt)
	return attempt, nil
}

// Attempt returns a registered attempt.
func (s *PlayService) Attempt(attemptID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// Finish forgets an attempt once its host is gone.
func (s *PlayService) Finish(attemptID string) {
	s.attempts.Remove(attemptID)
}

// Touch keeps an attempt counted as active while its host is alive.
func (s *PlayService) Touch(attemptID string) {
	s.attempts.Touch(attemptID)
}

// Active counts attempts of a quiz that are being played.
func (s *PlayService) Active(quizID string) int {
	return s.attempts.Active(quizID)
}

// Stats returns completion statistics for a quiz.
func (s *PlayService) Stats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	if s.stats == nil {
		return domain.QuizStats{QuizID: quizID, Results: map[string]int64{}}, nil
	}
	return s.stats.Stats(ctx, quizID)
}

// Quizzes lists the catalog, or nothing when no catalog is configured.
func (s *PlayService) Quizzes(ctx context.Context) ([]domain.Summary, error) {
	if s.catalog == nil {
		return []domain.Summary{}, nil
	}
	return s.catalog.ListQuizzes(ctx)
}
