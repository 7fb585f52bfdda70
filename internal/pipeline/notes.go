package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"recruitflow/internal/domain"
)

// AddNote appends an immutable note to a candidate's audit log. There is
// no update or delete; notes only go away with their candidate.
func (e *Engine) AddNote(ctx context.Context, candidateID, text, authorID string) (*domain.Note, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(domain.ErrValidation, "note text is required")
	}
	if strings.TrimSpace(authorID) == "" {
		return nil, errors.Wrap(domain.ErrValidation, "note author is required")
	}
	if _, err := e.store.GetCandidate(ctx, candidateID); err != nil {
		return nil, err
	}

	note := &domain.Note{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		AuthorID:    strings.TrimSpace(authorID),
		Text:        text,
		CreatedAt:   e.now(),
	}
	if err := e.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// ListNotes returns the candidate's notes, newest first.
func (e *Engine) ListNotes(ctx context.Context, candidateID string) ([]*domain.Note, error) {
	if _, err := e.store.GetCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	return e.store.ListNotes(ctx, candidateID)
}
