package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no session matches the id or code.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question index is out of range.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrParticipantNotFound is returned when a connection acts before joining.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrUnauthorized indicates a role or identity mismatch for the operation.
	ErrUnauthorized = errors.New("not authorized for this session")
	// ErrInvalidState rejects an operation the session lifecycle does not allow.
	ErrInvalidState = errors.New("operation not allowed in current session state")
	// ErrMalformedMessage rejects an inbound frame that failed to parse.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrCodeInUse is returned by stores when a generated join code collides.
	ErrCodeInUse = errors.New("session code already in use")
)
