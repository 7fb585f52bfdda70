package pipeline

import (
	"context"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"

	"recruitflow/internal/domain"
	"recruitflow/internal/notify"
)

// UpdateCandidateStatus moves a candidate through the pipeline state
// machine. Terminal candidates reject every target. The read-validate-
// write cycle runs under optimistic versioning; a losing writer re-reads
// and retries a bounded number of times before the conflict surfaces.
func (e *Engine) UpdateCandidateStatus(ctx context.Context, candidateID string, target domain.CandidateStatus) (*domain.Candidate, error) {
	var candidate *domain.Candidate
	err := e.withConflictRetry(func() error {
		var err error
		candidate, err = e.store.GetCandidate(ctx, candidateID)
		if err != nil {
			return err
		}
		if err := candidate.TransitionTo(target, e.now()); err != nil {
			return err
		}
		return e.store.UpdateCandidate(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"candidate_id": candidateID,
		"status":       target,
	}).Info("candidate status updated")
	e.dispatcher.Notify(ctx, notify.Event{
		Kind:        notify.EventCandidateStatusChanged,
		JobID:       candidate.JobID,
		CandidateID: candidate.ID,
		Detail:      string(target),
		OccurredAt:  e.now(),
	})
	return candidate, nil
}

// withConflictRetry re-runs fn while it keeps losing optimistic-version
// races. Every other error class aborts immediately; after the bounded
// attempts the conflict is surfaced to the caller.
func (e *Engine) withConflictRetry(fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(e.retries),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, domain.ErrConcurrencyConflict)
		}),
	)
}
