package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"recruitflow/internal/domain"
)

// CreateJobRequest enumerates every field recognized when opening a
// requisition.
type CreateJobRequest struct {
	Title          string   `json:"title"`
	RequiredSkills []string `json:"required_skills"`
	PipelineStages []string `json:"pipeline_stages"`
	Status         string   `json:"status"`
}

func (e *Engine) CreateJob(ctx context.Context, req CreateJobRequest) (*domain.Job, error) {
	status := domain.JobStatus(req.Status)
	if req.Status == "" {
		status = domain.JobActive
	}
	now := e.now()
	job := &domain.Job{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(req.Title),
		RequiredSkills: dedupeSkills(req.RequiredSkills),
		PipelineStages: req.PipelineStages,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := e.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	e.log.WithFields(map[string]interface{}{"job_id": job.ID, "title": job.Title}).Info("job created")
	return job, nil
}

func (e *Engine) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	return e.store.GetJob(ctx, id)
}

func (e *Engine) ListJobs(ctx context.Context) ([]*domain.Job, error) {
	return e.store.ListJobs(ctx)
}

// UpdateJobStatus moves a requisition between active, draft and closed.
func (e *Engine) UpdateJobStatus(ctx context.Context, id string, status domain.JobStatus) (*domain.Job, error) {
	switch status {
	case domain.JobActive, domain.JobDraft, domain.JobClosed:
	default:
		return nil, errors.Wrapf(domain.ErrValidation, "unknown job status %q", status)
	}
	var job *domain.Job
	err := e.withConflictRetry(func() error {
		var err error
		job, err = e.store.GetJob(ctx, id)
		if err != nil {
			return err
		}
		job.Status = status
		job.UpdatedAt = e.now()
		return e.store.UpdateJob(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// DeleteJob removes the job and cascades to its candidates, their
// interviews and their notes.
func (e *Engine) DeleteJob(ctx context.Context, id string) error {
	if err := e.store.DeleteJob(ctx, id); err != nil {
		return err
	}
	e.log.WithField("job_id", id).Info("job deleted with candidates, interviews and notes")
	return nil
}

// dedupeSkills trims entries and drops case-insensitive duplicates while
// preserving order.
func dedupeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
