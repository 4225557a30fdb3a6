package engine

import (
	"fmt"
	"strings"

	"introxpection-quiz/internal/domain"
)

// ValidationError lists every problem found in a definition.
type ValidationError struct {
	QuizID   string
	Problems []string
}

func (e *ValidationError) Error() string {
	prefix := domain.ErrInvalidConfiguration.Error()
	if e.QuizID != "" {
		prefix += " " + e.QuizID
	}
	return prefix + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidConfiguration
}

// Validate reports whether def can be played: at least one question, every
// question with text and two or more answers, and a non-empty set of
// uniquely identified profiles.
func Validate(def domain.Definition) error {
	var problems []string
	if len(def.Questions) == 0 {
		problems = append(problems, "no questions")
	}
	for i, q := range def.Questions {
		if strings.TrimSpace(q.Text) == "" {
			problems = append(problems, fmt.Sprintf("question %d: missing text", i+1))
		}
		if len(q.Answers) < 2 {
			problems = append(problems, fmt.Sprintf("question %d: %d answers, need at least 2", i+1, len(q.Answers)))
		}
	}
	if len(def.Profiles) == 0 {
		problems = append(problems, "no profiles")
	}
	seen := make(map[string]bool, len(def.Profiles))
	for i, p := range def.Profiles {
		switch {
		case p.ID == "":
			problems = append(problems, fmt.Sprintf("profile %d: missing id", i+1))
		case seen[p.ID]:
			problems = append(problems, fmt.Sprintf("profile %d: duplicate id %q", i+1, p.ID))
		}
		seen[p.ID] = true
	}
	if len(problems) > 0 {
		return &ValidationError{QuizID: def.ID, Problems: problems}
	}
	return nil
}
