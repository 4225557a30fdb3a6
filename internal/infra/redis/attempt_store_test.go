package redis

import (
	"testing"
	"time"

	"introxpection-quiz/internal/app"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestAttemptStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr), time.Minute)

	store.Register(&app.Attempt{ID: "a1", QuizID: "quiz-1"})
	if !mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected local attempt")
	}
	if n := store.Active("quiz-1"); n != 1 {
		t.Fatalf("expected 1 active attempt, got %d", n)
	}

	store.Remove("a1")
	if mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected redis key to be removed")
	}
	if n := store.Active("quiz-1"); n != 0 {
		t.Fatalf("expected no active attempts, got %d", n)
	}
}

func TestAttemptStoreCountsAcrossInstances(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	first := NewAttemptStore(newClient(mr), time.Minute)
	second := NewAttemptStore(newClient(mr), 10*time.Minute)

	first.Register(&app.Attempt{ID: "a1", QuizID: "quiz-1"})
	second.Register(&app.Attempt{ID: "a2", QuizID: "quiz-1"})
	if n := first.Active("quiz-1"); n != 2 {
		t.Fatalf("expected 2 active attempts across instances, got %d", n)
	}

	// a1's marker expires; a2 is still alive.
	mr.FastForward(2 * time.Minute)
	if n := second.Active("quiz-1"); n != 1 {
		t.Fatalf("expected stale attempt pruned, got %d", n)
	}
	if members, _ := mr.Members("quiz:quiz-1:attempts"); len(members) != 1 || members[0] != "a2" {
		t.Fatalf("expected only a2 in set, got %v", members)
	}
}

func TestAttemptStoreTouchKeepsAttemptActive(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr), 10*time.Minute)
	store.Register(&app.Attempt{ID: "a1", QuizID: "quiz-1"})
	store.Register(&app.Attempt{ID: "a2", QuizID: "quiz-1"})

	mr.FastForward(6 * time.Minute)
	store.Touch("a1")
	mr.FastForward(6 * time.Minute)

	if n := store.Active("quiz-1"); n != 1 {
		t.Fatalf("expected touched attempt to stay active, got %d", n)
	}
	if members, _ := mr.Members("quiz:quiz-1:attempts"); len(members) != 1 || members[0] != "a1" {
		t.Fatalf("expected only a1 in set, got %v", members)
	}

	// Touching an unknown or removed attempt must not resurrect it.
	store.Remove("a1")
	store.Touch("a1")
	if mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected removed attempt to stay gone")
	}
}
