package pipeline

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"recruitflow/internal/cv"
	"recruitflow/internal/domain"
	"recruitflow/internal/storage"
)

// AddCandidateRequest enumerates every field recognized by the manual
// add path. Manual adds run through the same validation, scoring and
// dedup as batch ingestion.
type AddCandidateRequest struct {
	JobID           string   `json:"job_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
}

func (e *Engine) AddCandidate(ctx context.Context, req AddCandidateRequest) (*domain.Candidate, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.Wrap(domain.ErrValidation, "a contact email is required")
	}
	if req.ExperienceYears < 0 {
		return nil, errors.Wrap(domain.ErrValidation, "experience years must not be negative")
	}
	job, err := e.store.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	candidate, err := e.createOrUpdateCandidate(ctx, job, &cv.Extraction{
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		Skills:          req.Skills,
		ExperienceYears: req.ExperienceYears,
	})
	if err != nil {
		return nil, err
	}
	if req.Phone != "" {
		candidate.Phone = strings.TrimSpace(req.Phone)
		if err := e.store.UpdateCandidate(ctx, candidate); err != nil {
			return nil, err
		}
	}
	return candidate, nil
}

func (e *Engine) GetCandidate(ctx context.Context, id string) (*domain.Candidate, error) {
	return e.store.GetCandidate(ctx, id)
}

func (e *Engine) ListCandidates(ctx context.Context, jobID string, filter storage.CandidateFilter) ([]*domain.Candidate, error) {
	if _, err := e.store.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	return e.store.ListCandidates(ctx, jobID, filter)
}

// DeleteCandidate removes the candidate and everything it owns.
func (e *Engine) DeleteCandidate(ctx context.Context, id string) error {
	if err := e.store.DeleteCandidate(ctx, id); err != nil {
		return err
	}
	e.log.WithField("candidate_id", id).Info("candidate deleted")
	return nil
}
