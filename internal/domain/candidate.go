package domain

import (
	"time"

	"github.com/pkg/errors"
)

type CandidateStatus string

const (
	StatusNew       CandidateStatus = "new"
	StatusToContact CandidateStatus = "toContact"
	StatusInterview CandidateStatus = "interview"
	StatusHired     CandidateStatus = "hired"
	StatusRejected  CandidateStatus = "rejected"
)

// CandidateStatuses lists every status in canonical pipeline order.
func CandidateStatuses() []CandidateStatus {
	return []CandidateStatus{StatusNew, StatusToContact, StatusInterview, StatusHired, StatusRejected}
}

// Terminal reports whether no further transitions are allowed.
func (s CandidateStatus) Terminal() bool {
	return s == StatusHired || s == StatusRejected
}

// Valid reports whether s is a known status.
func (s CandidateStatus) Valid() bool {
	switch s {
	case StatusNew, StatusToContact, StatusInterview, StatusHired, StatusRejected:
		return true
	}
	return false
}

// StatusEntry is one append-only record of a candidate entering a status.
type StatusEntry struct {
	Status    CandidateStatus `json:"status"`
	EnteredAt time.Time       `json:"entered_at"`
}

// Candidate is a person evaluated against exactly one job.
// StatusHistory is append-only; its last entry always equals Status.
// MatchingScore is written only by the ingestion pipeline.
type Candidate struct {
	ID              string          `json:"id"`
	JobID           string          `json:"job_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	Skills          []string        `json:"skills"`
	ExperienceYears int             `json:"experience_years"`
	MatchingScore   int             `json:"matching_score"`
	Status          CandidateStatus `json:"status"`
	StatusHistory   []StatusEntry   `json:"status_history"`
	LastActivity    time.Time       `json:"last_activity"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransitionTo validates and applies a status change. Terminal candidates
// reject every target; a non-terminal candidate may move to any status
// other than its current one. Accepted transitions append one history
// entry and refresh LastActivity.
func (c *Candidate) TransitionTo(target CandidateStatus, now time.Time) error {
	if !target.Valid() {
		return errors.Wrapf(ErrValidation, "unknown candidate status %q", target)
	}
	if c.Status.Terminal() {
		return errors.Wrapf(ErrInvalidTransition, "candidate %s is %s", c.ID, c.Status)
	}
	if target == c.Status {
		return errors.Wrapf(ErrInvalidTransition, "candidate %s is already %s", c.ID, c.Status)
	}
	c.Status = target
	c.StatusHistory = append(c.StatusHistory, StatusEntry{Status: target, EnteredAt: now})
	c.LastActivity = now
	return nil
}

// DeepCopy returns a copy safe to mutate independently of the original.
// Needed because candidates stored in the in-memory store must not be
// modified in place.
func (c *Candidate) DeepCopy() *Candidate {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Skills = append([]string(nil), c.Skills...)
	cp.StatusHistory = append([]StatusEntry(nil), c.StatusHistory...)
	return &cp
}
