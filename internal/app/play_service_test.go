package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"introxpection-quiz/internal/analytics"
	"introxpection-quiz/internal/app"
	"introxpection-quiz/internal/domain"
	"introxpection-quiz/internal/infra/memory"
)

func TestStartAndComplete(t *testing.T) {
	ctx := context.Background()
	stats := memory.NewStatsStore()
	reporter := analytics.NewAsyncReporter(stats, 8, 1)
	reporter.Start()
	service, attempts := newTestService(stats, reporter)

	view := &frameCounter{}
	attempt, err := service.Start(ctx, "quiz-1", view, nil)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if attempt.ID == "" || attempt.QuizID != "quiz-1" {
		t.Fatalf("unexpected attempt %+v", attempt)
	}
	if view.frames != 1 {
		t.Fatalf("expected first question rendered, got %d frames", view.frames)
	}
	if service.Active("quiz-1") != 1 {
		t.Fatalf("expected one active attempt")
	}

	if err := attempt.Engine.SelectAndAdvance(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := attempt.Engine.SelectAndAdvance(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !attempt.Engine.IsComplete() {
		t.Fatalf("expected attempt complete")
	}

	service.Finish(attempt.ID)
	if _, ok := attempts.Get(attempt.ID); ok {
		t.Fatalf("expected attempt removed")
	}
	reporter.Close()

	got, err := service.Stats(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got.Completions != 1 || got.Results["owl"] != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestStartUnknownQuiz(t *testing.T) {
	service, _ := newTestService(nil, nil)

	if _, err := service.Start(context.Background(), "quiz-unknown", nil, nil); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if _, err := service.Start(context.Background(), "", nil, nil); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found for empty id, got %v", err)
	}
}

func TestStartRejectsInvalidDefinition(t *testing.T) {
	service, attempts := newTestService(nil, nil)

	_, err := service.Start(context.Background(), "broken", nil, nil)
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	if attempts.Active("broken") != 0 {
		t.Fatalf("invalid quiz must not register an attempt")
	}
}

func TestAttemptLookup(t *testing.T) {
	service, _ := newTestService(nil, nil)
	attempt, err := service.Start(context.Background(), "quiz-1", nil, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got, err := service.Attempt(attempt.ID); err != nil || got != attempt {
		t.Fatalf("expected same attempt, got %v %v", got, err)
	}
	if _, err := service.Attempt("missing"); err != domain.ErrAttemptNotFound {
		t.Fatalf("expected attempt not found, got %v", err)
	}
}

func TestQuizzesAndEmptyStats(t *testing.T) {
	service, _ := newTestService(nil, nil)

	list, err := service.Quizzes(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty catalog without loader, got %v %v", list, err)
	}
	service.SetCatalog(testLoader())
	list, err = service.Quizzes(context.Background())
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 quizzes, got %v %v", list, err)
	}

	stats, err := service.Stats(context.Background(), "quiz-1")
	if err != nil || stats.Completions != 0 {
		t.Fatalf("expected empty stats, got %+v %v", stats, err)
	}
}

type frameCounter struct {
	frames int
}

func (f *frameCounter) Render(domain.Snapshot, domain.Frame) {
	f.frames++
}

func newTestService(stats analytics.StatsReader, reporter *analytics.AsyncReporter) (*app.PlayService, *memory.AttemptStore) {
	attempts := memory.NewAttemptStore()
	quizRepo := memory.NewQuizRepository(testLoader(), 5*time.Minute)
	if reporter == nil {
		return app.NewPlayService(quizRepo, attempts, stats, nil), attempts
	}
	return app.NewPlayService(quizRepo, attempts, stats, reporter), attempts
}

func testLoader() *memory.StaticQuizLoader {
	return memory.NewStaticQuizLoader(map[string]domain.Definition{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Morning person?",
			Questions: []domain.Question{
				{
					Text: "When do you wake up?",
					Answers: []domain.Answer{
						{Text: "At dawn", Scores: map[string]int{"lark": 2}},
						{Text: "At noon", Scores: map[string]int{"owl": 2}},
					},
				},
				{
					Text: "Best hour to think?",
					Answers: []domain.Answer{
						{Text: "8am", Scores: map[string]int{"lark": 1}},
						{Text: "2am", Scores: map[string]int{"owl": 1}},
					},
				},
			},
			Profiles: []domain.Profile{
				{ID: "lark", Name: "Lark"},
				{ID: "owl", Name: "Owl"},
			},
		},
		"broken": {
			ID:        "broken",
			Questions: []domain.Question{{Text: "Only one", Answers: []domain.Answer{{Text: "x"}}}},
		},
	})
}
