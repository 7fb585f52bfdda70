package domain

import "errors"

// Error taxonomy for the pipeline engine. Callers classify with errors.Is;
// wrapping adds context without changing the class.
var (
	// ErrValidation covers malformed input: empty pipeline stages, a
	// disallowed mime type, a blank note, and so on.
	ErrValidation = errors.New("validation error")

	// ErrUnparsableDocument is a per-document analyzer failure. Inside a
	// batch it is collected into the failed list, never returned.
	ErrUnparsableDocument = errors.New("unparsable document")

	// ErrInvalidTransition is returned for a candidate status change that
	// the state machine does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCandidateTerminal is returned when an operation requires a
	// candidate that can still move through the pipeline.
	ErrCandidateTerminal = errors.New("candidate is in a terminal status")

	// ErrInvalidState is returned for interview operations attempted
	// outside the scheduled state.
	ErrInvalidState = errors.New("interview is not in a valid state")

	// ErrPastDate is returned when an interview is scheduled in the past.
	ErrPastDate = errors.New("scheduled time is in the past")

	ErrNotFound = errors.New("not found")

	// ErrConcurrencyConflict signals an optimistic version mismatch.
	// Retryable by construction: re-read and try again.
	ErrConcurrencyConflict = errors.New("concurrent modification conflict")
)
