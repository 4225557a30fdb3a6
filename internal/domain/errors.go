package domain

import "errors"

var (
	// ErrInvalidConfiguration is returned when a quiz definition cannot be played.
	ErrInvalidConfiguration = errors.New("invalid quiz configuration")
	// ErrInvalidAnswerIndex is returned when a selection is outside the current question's answers.
	ErrInvalidAnswerIndex = errors.New("answer index out of range")
	// ErrAnswerRequired is returned when advancing past an unanswered question.
	ErrAnswerRequired = errors.New("answer required before advancing")
	// ErrQuizAlreadyComplete is returned when a completed attempt is mutated.
	ErrQuizAlreadyComplete = errors.New("quiz already complete")
	// ErrQuizNotFound indicates the quiz definition could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates an attempt id is unknown to the host.
	ErrAttemptNotFound = errors.New("attempt not found")
)
