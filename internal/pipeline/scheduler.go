package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"recruitflow/internal/domain"
	"recruitflow/internal/notify"
)

// ScheduleInterviewRequest enumerates every field recognized when
// booking an interview. Calendar conflict detection is deliberately left
// to the caller's scheduling assistant.
type ScheduleInterviewRequest struct {
	CandidateID string    `json:"candidate_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Interviewer string    `json:"interviewer"`
	Location    string    `json:"location"`
	Kind        string    `json:"kind"`
}

// ScheduleInterview books an interview for a candidate. A candidate not
// yet in the interview status is transitioned to it in the same store
// transaction as the interview row; booking further interviews for a
// candidate already in interview leaves the status alone.
func (e *Engine) ScheduleInterview(ctx context.Context, req ScheduleInterviewRequest) (*domain.Interview, error) {
	if strings.TrimSpace(req.Interviewer) == "" {
		return nil, errors.Wrap(domain.ErrValidation, "interviewer is required")
	}
	if req.ScheduledAt.Before(e.now()) {
		return nil, errors.Wrapf(domain.ErrPastDate, "scheduled for %s", req.ScheduledAt.Format(time.RFC3339))
	}

	var interview *domain.Interview
	err := e.withConflictRetry(func() error {
		candidate, err := e.store.GetCandidate(ctx, req.CandidateID)
		if err != nil {
			return err
		}
		if candidate.Status.Terminal() {
			return errors.Wrapf(domain.ErrCandidateTerminal, "candidate %s is %s", candidate.ID, candidate.Status)
		}

		now := e.now()
		interview = &domain.Interview{
			ID:          uuid.NewString(),
			CandidateID: candidate.ID,
			JobID:       candidate.JobID,
			ScheduledAt: req.ScheduledAt,
			Interviewer: strings.TrimSpace(req.Interviewer),
			Location:    strings.TrimSpace(req.Location),
			Kind:        strings.TrimSpace(req.Kind),
			Status:      domain.InterviewScheduled,
			CreatedAt:   now,
		}

		if candidate.Status == domain.StatusInterview {
			// second interview, no additional transition
			return e.store.CreateInterview(ctx, interview, nil)
		}
		if err := candidate.TransitionTo(domain.StatusInterview, now); err != nil {
			return err
		}
		return e.store.CreateInterview(ctx, interview, candidate)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"interview_id": interview.ID,
		"candidate_id": interview.CandidateID,
		"interviewer":  interview.Interviewer,
	}).Info("interview scheduled")
	e.dispatcher.Notify(ctx, notify.Event{
		Kind:        notify.EventInterviewScheduled,
		JobID:       interview.JobID,
		CandidateID: interview.CandidateID,
		InterviewID: interview.ID,
		OccurredAt:  e.now(),
	})
	return interview, nil
}

// RecordInterviewOutcome closes a scheduled interview as completed,
// canceled or noShow. Feedback can only be attached on the way out of
// scheduled; providing feedback without an outcome completes the
// interview.
func (e *Engine) RecordInterviewOutcome(ctx context.Context, interviewID string, outcome domain.InterviewStatus, feedback string) (*domain.Interview, error) {
	if outcome == "" && feedback != "" {
		outcome = domain.InterviewCompleted
	}
	var interview *domain.Interview
	err := e.withConflictRetry(func() error {
		var err error
		interview, err = e.store.GetInterview(ctx, interviewID)
		if err != nil {
			return err
		}
		if err := interview.Close(outcome, feedback); err != nil {
			return err
		}
		return e.store.UpdateInterview(ctx, interview)
	})
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"interview_id": interviewID,
		"outcome":      outcome,
	}).Info("interview outcome recorded")
	e.dispatcher.Notify(ctx, notify.Event{
		Kind:        notify.EventInterviewClosed,
		JobID:       interview.JobID,
		CandidateID: interview.CandidateID,
		InterviewID: interview.ID,
		Detail:      string(outcome),
		OccurredAt:  e.now(),
	})
	return interview, nil
}

// RescheduleInterview moves a scheduled interview to a new time. This is
// a plain date update, not a status transition.
func (e *Engine) RescheduleInterview(ctx context.Context, interviewID string, newTime time.Time) (*domain.Interview, error) {
	if newTime.Before(e.now()) {
		return nil, errors.Wrapf(domain.ErrPastDate, "rescheduled for %s", newTime.Format(time.RFC3339))
	}
	var interview *domain.Interview
	err := e.withConflictRetry(func() error {
		var err error
		interview, err = e.store.GetInterview(ctx, interviewID)
		if err != nil {
			return err
		}
		if interview.Status != domain.InterviewScheduled {
			return errors.Wrapf(domain.ErrInvalidState, "interview %s is %s", interview.ID, interview.Status)
		}
		interview.ScheduledAt = newTime
		return e.store.UpdateInterview(ctx, interview)
	})
	if err != nil {
		return nil, err
	}
	return interview, nil
}

func (e *Engine) ListInterviews(ctx context.Context, candidateID string) ([]*domain.Interview, error) {
	if _, err := e.store.GetCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	return e.store.ListInterviews(ctx, candidateID)
}
