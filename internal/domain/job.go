package domain

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type JobStatus string

const (
	JobActive JobStatus = "active"
	JobDraft  JobStatus = "draft"
	JobClosed JobStatus = "closed"
)

// Job is a hiring requisition. PipelineStages holds per-job display labels
// for the hiring funnel; they are presentation only and distinct from the
// fixed CandidateStatus enum that drives the state machine.
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	RequiredSkills []string  `json:"required_skills"`
	PipelineStages []string  `json:"pipeline_stages"`
	Status         JobStatus `json:"status"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// canonical stage order used to map display labels onto statuses
var stageStatusOrder = []CandidateStatus{
	StatusNew, StatusToContact, StatusInterview, StatusHired, StatusRejected,
}

// Validate checks the structural invariants of a job definition.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return errors.Wrap(ErrValidation, "job title is required")
	}
	if len(j.PipelineStages) == 0 {
		return errors.Wrap(ErrValidation, "at least one pipeline stage is required")
	}
	seen := make(map[string]struct{}, len(j.PipelineStages))
	for _, stage := range j.PipelineStages {
		label := strings.TrimSpace(stage)
		if label == "" {
			return errors.Wrap(ErrValidation, "pipeline stage labels must not be blank")
		}
		key := strings.ToLower(label)
		if _, dup := seen[key]; dup {
			return errors.Wrapf(ErrValidation, "duplicate pipeline stage %q", stage)
		}
		seen[key] = struct{}{}
	}
	switch j.Status {
	case JobActive, JobDraft, JobClosed:
	default:
		return errors.Wrapf(ErrValidation, "unknown job status %q", j.Status)
	}
	return nil
}

// StageForStatus resolves the display label shown for a candidate status.
// Labels map positionally onto the canonical status order; jobs with fewer
// labels than statuses reuse the last label for the remaining statuses.
func (j *Job) StageForStatus(status CandidateStatus) string {
	if len(j.PipelineStages) == 0 {
		return string(status)
	}
	for i, s := range stageStatusOrder {
		if s != status {
			continue
		}
		if i < len(j.PipelineStages) {
			return j.PipelineStages[i]
		}
		return j.PipelineStages[len(j.PipelineStages)-1]
	}
	return string(status)
}

// DeepCopy returns a copy safe to mutate independently of the original.
func (j *Job) DeepCopy() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	cp.PipelineStages = append([]string(nil), j.PipelineStages...)
	return &cp
}
