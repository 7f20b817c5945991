package domain

import "errors"

var (
	// ErrTriviaSetNotFound indicates the trivia set could not be loaded.
	ErrTriviaSetNotFound = errors.New("trivia set not found")
	// ErrSessionNotFound is returned when a play session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrNoJSON means no JSON value could be recovered from the text.
	ErrNoJSON = errors.New("no json found in text")
	// ErrInvalidTriviaSet means the recovered value does not have the trivia set shape.
	ErrInvalidTriviaSet = errors.New("invalid trivia set format")
	// ErrEmptyTriviaSet is returned when a session is requested for a set without questions.
	ErrEmptyTriviaSet = errors.New("trivia set has no questions")
	// ErrGeneratorDisabled is returned when no trivia generator is configured.
	ErrGeneratorDisabled = errors.New("trivia generator not configured")
)
