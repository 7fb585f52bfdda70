package domain

import (
	"time"

	"github.com/pkg/errors"
)

type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "scheduled"
	InterviewCompleted InterviewStatus = "completed"
	InterviewCanceled  InterviewStatus = "canceled"
	InterviewNoShow    InterviewStatus = "noShow"
)

// Terminal reports whether the interview can no longer change status.
// Everything except scheduled is terminal.
func (s InterviewStatus) Terminal() bool {
	return s != InterviewScheduled
}

// Interview is owned by a candidate; JobID is denormalized for reporting.
// Feedback may only be attached while leaving the scheduled state.
type Interview struct {
	ID          string          `json:"id"`
	CandidateID string          `json:"candidate_id"`
	JobID       string          `json:"job_id"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	Interviewer string          `json:"interviewer"`
	Location    string          `json:"location,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	Status      InterviewStatus `json:"status"`
	Feedback    string          `json:"feedback,omitempty"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Close moves a scheduled interview to one of its terminal outcomes,
// optionally recording feedback. Rescheduling is a date update, not a
// status transition, so scheduled -> scheduled is rejected here.
func (i *Interview) Close(outcome InterviewStatus, feedback string) error {
	if i.Status != InterviewScheduled {
		return errors.Wrapf(ErrInvalidState, "interview %s is %s", i.ID, i.Status)
	}
	switch outcome {
	case InterviewCompleted, InterviewCanceled, InterviewNoShow:
	default:
		return errors.Wrapf(ErrValidation, "invalid interview outcome %q", outcome)
	}
	i.Status = outcome
	if feedback != "" {
		i.Feedback = feedback
	}
	return nil
}

// DeepCopy returns a copy safe to mutate independently of the original.
func (i *Interview) DeepCopy() *Interview {
	if i == nil {
		return nil
	}
	cp := *i
	return &cp
}
