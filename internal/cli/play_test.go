package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"introxpection-quiz/internal/domain"
	"introxpection-quiz/internal/engine"
	"introxpection-quiz/internal/infra/file"
	"introxpection-quiz/internal/infra/sqlite"
)

type completions []domain.Completion

func (c *completions) Report(done domain.Completion) { *c = append(*c, done) }

func TestPlayQuizToResult(t *testing.T) {
	var out bytes.Buffer
	var got completions
	def := sampleQuizzes()["work-style"]

	err := playQuiz(def, strings.NewReader("\na\nz\na\na\n<\nq\n"), &out, &got)
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"! " + engine.AnswerRequiredMessage,
		"error: answer index out of range",
		"The Architect",
		`I just took "What is your work style?" and I am: The Architect! Plans first, builds once`,
		"The quiz is complete.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, text)
		}
	}
	if len(got) != 1 || got[0].ProfileID != "architect" || got[0].Scores["architect"] != 7 {
		t.Fatalf("unexpected completions %+v", got)
	}
}

func TestPlayQuizRetake(t *testing.T) {
	var out bytes.Buffer
	var got completions
	def := sampleQuizzes()["work-style"]

	input := "b\nb\nb\nr\nc\nc\nc\n"
	if err := playQuiz(def, strings.NewReader(input), &out, &got); err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two completions, got %d", len(got))
	}
	if got[0].ProfileID != "explorer" || got[1].ProfileID != "connector" {
		t.Fatalf("unexpected winners %s, %s", got[0].ProfileID, got[1].ProfileID)
	}
}

func TestPlayRejectsInvalidDefinition(t *testing.T) {
	def := domain.Definition{ID: "broken"}
	if err := playQuiz(def, strings.NewReader(""), &bytes.Buffer{}, nil); err == nil {
		t.Fatalf("expected configuration error")
	}
}

func TestPlayExampleFilesExist(t *testing.T) {
	cmd := NewPlayCmd(new(string))
	found := 0
	for _, field := range strings.Fields(cmd.Example) {
		if !strings.HasPrefix(field, "quizzes/") {
			continue
		}
		found++
		path := filepath.Join("..", "..", field)
		def, err := file.ReadDefinition(path)
		if err != nil {
			t.Fatalf("example %s: %v", field, err)
		}
		if err := engine.Validate(def); err != nil {
			t.Fatalf("example %s: %v", field, err)
		}
	}
	if found == 0 {
		t.Fatalf("expected a quiz file in the play examples")
	}
}

func TestValidatePaths(t *testing.T) {
	dir := t.TempDir()
	good := `
id: good
title: Good
questions:
  - text: Pick one
    answers:
      - text: A
        scores: {x: 1}
      - text: B
        scores: {y: 1}
profiles:
  - id: x
    name: X
  - id: y
    name: Y
`
	bad := `
id: bad
title: Bad
questions:
  - text: Pick one
    answers:
      - text: only
profiles:
  - id: x
    name: X
  - id: x
    name: X again
`
	writeFile(t, filepath.Join(dir, "good.yaml"), good)

	var out bytes.Buffer
	if err := validatePaths(&out, []string{dir}); err != nil {
		t.Fatalf("expected valid directory, got %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "ok   ") {
		t.Fatalf("expected ok line, got %s", out.String())
	}

	writeFile(t, filepath.Join(dir, "bad.yaml"), bad)
	out.Reset()
	if err := validatePaths(&out, []string{dir, filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(out.String(), "FAIL") || !strings.Contains(out.String(), "missing.yaml") {
		t.Fatalf("expected failures reported, got %s", out.String())
	}
}

func TestPrintStats(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	var out bytes.Buffer
	if err := printStats(ctx, &out, store, ""); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out.String(), "No completions") {
		t.Fatalf("expected empty message, got %s", out.String())
	}

	for _, profile := range []string{"architect", "architect", "explorer", "connector"} {
		if err := store.Record(ctx, domain.Completion{QuizID: "work-style", ProfileID: profile}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	out.Reset()
	if err := printStats(ctx, &out, store, ""); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out.String(), "work-style: 4 completion(s)") || !strings.Contains(out.String(), "50.0%") {
		t.Fatalf("unexpected stats output:\n%s", out.String())
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
