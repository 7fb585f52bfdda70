package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"recruitflow/internal/cv"
	"recruitflow/internal/domain"
	"recruitflow/internal/notify"
)

// Document is one resume submitted for batch ingestion.
type Document struct {
	DocumentID string `json:"document_id"`
	Bytes      []byte `json:"-"`
	MimeType   string `json:"mime_type"`
}

// DocumentFailure records why a single document produced no candidate.
type DocumentFailure struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

// BatchResult is the outcome of one ingestion batch. Every document ends
// up in exactly one of the two lists: len(Created)+len(Failed) equals the
// batch size.
type BatchResult struct {
	Created []*domain.Candidate `json:"created"`
	Failed  []DocumentFailure   `json:"failed"`
}

// IngestCandidates scores a batch of resumes against a job and creates or
// updates one candidate per document. Documents are processed
// independently across a bounded worker pool; one bad document never
// aborts the rest. The whole batch is rejected up front with a validation
// error when any declared mime type is outside pdf/doc/docx.
//
// Cancelling ctx stops dispatching new documents; documents already
// handed to a worker run to completion and their candidates stay in
// place.
func (e *Engine) IngestCandidates(ctx context.Context, jobID string, docs []Document) (*BatchResult, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if _, err := cv.NormalizeMimeType(doc.MimeType); err != nil {
			return nil, errors.Wrapf(err, "document %s", doc.DocumentID)
		}
	}

	result := &BatchResult{}
	if len(docs) == 0 {
		return result, nil
	}

	type outcome struct {
		candidate *domain.Candidate
		failure   *DocumentFailure
	}

	tasks := make(chan Document)
	outcomes := make(chan outcome, len(docs))

	workers := e.workers
	if workers > len(docs) {
		workers = len(docs)
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range tasks {
				candidate, err := e.processDocument(ctx, job, doc)
				if err != nil {
					outcomes <- outcome{failure: &DocumentFailure{DocumentID: doc.DocumentID, Reason: err.Error()}}
					continue
				}
				outcomes <- outcome{candidate: candidate}
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, doc := range docs {
		select {
		case tasks <- doc:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(tasks)

	// documents never dispatched still need a result entry
	for _, doc := range docs[dispatched:] {
		outcomes <- outcome{failure: &DocumentFailure{DocumentID: doc.DocumentID, Reason: "batch canceled before processing"}}
	}

	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.failure != nil {
			result.Failed = append(result.Failed, *o.failure)
			continue
		}
		result.Created = append(result.Created, o.candidate)
	}

	e.log.WithFields(map[string]interface{}{
		"job_id":  jobID,
		"batch":   len(docs),
		"created": len(result.Created),
		"failed":  len(result.Failed),
	}).Info("ingestion batch finished")
	return result, nil
}

// processDocument runs the analyzer under its timeout and applies the
// create-or-update. The analyzer call is the only suspension point and is
// never guarded by an entity lock.
func (e *Engine) processDocument(ctx context.Context, job *domain.Job, doc Document) (*domain.Candidate, error) {
	analyzeCtx, cancel := context.WithTimeout(ctx, e.analyzerTimeout)
	defer cancel()

	extraction, err := e.analyzer.Analyze(analyzeCtx, doc.Bytes, doc.MimeType)
	if err != nil {
		if analyzeCtx.Err() != nil {
			// a timed-out analysis is an ordinary analyzer failure
			return nil, errors.Wrapf(domain.ErrUnparsableDocument, "analyzer timed out after %s", e.analyzerTimeout)
		}
		if errors.Is(err, domain.ErrUnparsableDocument) {
			return nil, err
		}
		return nil, errors.Wrapf(domain.ErrUnparsableDocument, "analyzer: %v", err)
	}
	if strings.TrimSpace(extraction.Email) == "" {
		return nil, errors.Wrap(domain.ErrUnparsableDocument, "no contact email extracted")
	}

	return e.createOrUpdateCandidate(ctx, job, extraction)
}

// createOrUpdateCandidate applies the dedup policy: one candidate per
// (job, email), last write wins on skills, score and experience; status,
// history, notes and interviews of an existing candidate stay untouched.
func (e *Engine) createOrUpdateCandidate(ctx context.Context, job *domain.Job, extraction *cv.Extraction) (*domain.Candidate, error) {
	email := strings.ToLower(strings.TrimSpace(extraction.Email))
	score := cv.MatchScore(extraction.Skills, job.RequiredSkills, extraction.ExperienceYears)

	unlock := e.dedup.lock(job.ID + "\x00" + email)
	defer unlock()

	existing, err := e.store.GetCandidateByEmail(ctx, job.ID, email)
	switch {
	case err == nil:
		existing.Skills = dedupeSkills(extraction.Skills)
		existing.ExperienceYears = extraction.ExperienceYears
		existing.MatchingScore = score
		if extraction.Name != "" {
			existing.Name = extraction.Name
		}
		existing.LastActivity = e.now()
		if err := e.store.UpdateCandidate(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		now := e.now()
		candidate := &domain.Candidate{
			ID:              uuid.NewString(),
			JobID:           job.ID,
			Name:            extraction.Name,
			Email:           email,
			Skills:          dedupeSkills(extraction.Skills),
			ExperienceYears: extraction.ExperienceYears,
			MatchingScore:   score,
			Status:          domain.StatusNew,
			StatusHistory:   []domain.StatusEntry{{Status: domain.StatusNew, EnteredAt: now}},
			LastActivity:    now,
			CreatedAt:       now,
		}
		if err := e.store.CreateCandidate(ctx, candidate); err != nil {
			return nil, err
		}
		e.dispatcher.Notify(ctx, notify.Event{
			Kind:        notify.EventCandidateCreated,
			JobID:       job.ID,
			CandidateID: candidate.ID,
			OccurredAt:  now,
		})
		return candidate, nil
	default:
		return nil, err
	}
}
