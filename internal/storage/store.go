package storage

import (
	"context"

	"recruitflow/internal/domain"
)

// CandidateFilter narrows ListCandidates. Zero value matches everything.
type CandidateFilter struct {
	Statuses []domain.CandidateStatus
	// Search matches name or email, case-insensitively.
	Search string
}

// Store is the durable backend for the pipeline engine. Every entity
// carries a version; updates must present the version they read and fail
// with domain.ErrConcurrencyConflict when it is stale. Deleting a job
// cascades to its candidates and transitively to interviews and notes.
type Store interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context) ([]*domain.Job, error)

	CreateCandidate(ctx context.Context, c *domain.Candidate) error
	GetCandidate(ctx context.Context, id string) (*domain.Candidate, error)
	// GetCandidateByEmail looks up the ingestion dedup key (job, email).
	GetCandidateByEmail(ctx context.Context, jobID, email string) (*domain.Candidate, error)
	UpdateCandidate(ctx context.Context, c *domain.Candidate) error
	DeleteCandidate(ctx context.Context, id string) error
	ListCandidates(ctx context.Context, jobID string, filter CandidateFilter) ([]*domain.Candidate, error)

	// CreateInterview persists the interview and, when candidate is not
	// nil, the candidate update in the same transaction. Either both
	// commit or neither does.
	CreateInterview(ctx context.Context, iv *domain.Interview, candidate *domain.Candidate) error
	GetInterview(ctx context.Context, id string) (*domain.Interview, error)
	UpdateInterview(ctx context.Context, iv *domain.Interview) error
	ListInterviews(ctx context.Context, candidateID string) ([]*domain.Interview, error)

	CreateNote(ctx context.Context, note *domain.Note) error
	// ListNotes returns notes ordered by creation time, newest first.
	ListNotes(ctx context.Context, candidateID string) ([]*domain.Note, error)

	Close() error
}
