package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/hashicorp/go-memdb"
	"github.com/pkg/errors"

	"recruitflow/internal/domain"
)

const (
	jobsTable       = "jobs"
	candidatesTable = "candidates"
	interviewsTable = "interviews"
	notesTable      = "notes"

	idIndex        = "id"
	jobIndex       = "job"
	jobEmailIndex  = "job_email"
	candidateIndex = "candidate"
)

// MemStore is an in-memory Store built on go-memdb. It backs the test
// suites and the standalone dev mode (no DATABASE_URL). Objects are deep
// copied on both read and write because memdb shares them between
// transactions; optimistic versioning is checked at write time.
type MemStore struct {
	db *memdb.MemDB
}

func memSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			jobsTable: {
				Name: jobsTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {Name: idIndex, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
				},
			},
			candidatesTable: {
				Name: candidatesTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex:  {Name: idIndex, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					jobIndex: {Name: jobIndex, Indexer: &memdb.StringFieldIndex{Field: "JobID"}},
					jobEmailIndex: {
						Name: jobEmailIndex,
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "JobID"},
							&memdb.StringFieldIndex{Field: "Email", Lowercase: true},
						}},
					},
				},
			},
			interviewsTable: {
				Name: interviewsTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex:        {Name: idIndex, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					candidateIndex: {Name: candidateIndex, Indexer: &memdb.StringFieldIndex{Field: "CandidateID"}},
				},
			},
			notesTable: {
				Name: notesTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex:        {Name: idIndex, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					candidateIndex: {Name: candidateIndex, Indexer: &memdb.StringFieldIndex{Field: "CandidateID"}},
				},
			},
		},
	}
}

func NewMemStore() (*MemStore, error) {
	db, err := memdb.NewMemDB(memSchema())
	if err != nil {
		return nil, errors.Wrap(err, "building memdb schema")
	}
	return &MemStore{db: db}, nil
}

func (s *MemStore) Close() error { return nil }

func (s *MemStore) CreateJob(_ context.Context, job *domain.Job) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	job.Version = 1
	if err := txn.Insert(jobsTable, job.DeepCopy()); err != nil {
		return errors.Wrap(err, "inserting job")
	}
	txn.Commit()
	return nil
}

func (s *MemStore) GetJob(_ context.Context, id string) (*domain.Job, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(jobsTable, idIndex, id)
	if err != nil {
		return nil, errors.Wrap(err, "reading job")
	}
	if raw == nil {
		return nil, errors.Wrapf(domain.ErrNotFound, "job %s", id)
	}
	return raw.(*domain.Job).DeepCopy(), nil
}

func (s *MemStore) UpdateJob(_ context.Context, job *domain.Job) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(jobsTable, idIndex, job.ID)
	if err != nil {
		return errors.Wrap(err, "reading job")
	}
	if raw == nil {
		return errors.Wrapf(domain.ErrNotFound, "job %s", job.ID)
	}
	if raw.(*domain.Job).Version != job.Version {
		return errors.Wrapf(domain.ErrConcurrencyConflict, "job %s version %d", job.ID, job.Version)
	}
	job.Version++
	if err := txn.Insert(jobsTable, job.DeepCopy()); err != nil {
		return errors.Wrap(err, "updating job")
	}
	txn.Commit()
	return nil
}

// DeleteJob removes the job together with its candidates and their
// interviews and notes, all in one transaction.
func (s *MemStore) DeleteJob(_ context.Context, id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(jobsTable, idIndex, id)
	if err != nil {
		return errors.Wrap(err, "reading job")
	}
	if raw == nil {
		return errors.Wrapf(domain.ErrNotFound, "job %s", id)
	}
	candidates, err := collect[*domain.Candidate](txn, candidatesTable, jobIndex, id)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		if err := deleteOwned(txn, c.ID); err != nil {
			return err
		}
		if err := txn.Delete(candidatesTable, c); err != nil {
			return errors.Wrap(err, "deleting candidate")
		}
	}
	if err := txn.Delete(jobsTable, raw); err != nil {
		return errors.Wrap(err, "deleting job")
	}
	txn.Commit()
	return nil
}

func (s *MemStore) ListJobs(_ context.Context) ([]*domain.Job, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(jobsTable, idIndex)
	if err != nil {
		return nil, errors.Wrap(err, "listing jobs")
	}
	var jobs []*domain.Job
	for raw := it.Next(); raw != nil; raw = it.Next() {
		jobs = append(jobs, raw.(*domain.Job).DeepCopy())
	}
	return jobs, nil
}

func (s *MemStore) CreateCandidate(_ context.Context, c *domain.Candidate) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	c.Version = 1
	if err := txn.Insert(candidatesTable, c.DeepCopy()); err != nil {
		return errors.Wrap(err, "inserting candidate")
	}
	txn.Commit()
	return nil
}

func (s *MemStore) GetCandidate(_ context.Context, id string) (*domain.Candidate, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(candidatesTable, idIndex, id)
	if err != nil {
		return nil, errors.Wrap(err, "reading candidate")
	}
	if raw == nil {
		return nil, errors.Wrapf(domain.ErrNotFound, "candidate %s", id)
	}
	return raw.(*domain.Candidate).DeepCopy(), nil
}

func (s *MemStore) GetCandidateByEmail(_ context.Context, jobID, email string) (*domain.Candidate, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(candidatesTable, jobEmailIndex, jobID, strings.ToLower(email))
	if err != nil {
		return nil, errors.Wrap(err, "reading candidate by email")
	}
	if raw == nil {
		return nil, errors.Wrapf(domain.ErrNotFound, "candidate %s for job %s", email, jobID)
	}
	return raw.(*domain.Candidate).DeepCopy(), nil
}

func (s *MemStore) UpdateCandidate(_ context.Context, c *domain.Candidate) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := updateCandidateTxn(txn, c); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func updateCandidateTxn(txn *memdb.Txn, c *domain.Candidate) error {
	raw, err := txn.First(candidatesTable, idIndex, c.ID)
	if err != nil {
		return errors.Wrap(err, "reading candidate")
	}
	if raw == nil {
		return errors.Wrapf(domain.ErrNotFound, "candidate %s", c.ID)
	}
	if raw.(*domain.Candidate).Version != c.Version {
		return errors.Wrapf(domain.ErrConcurrencyConflict, "candidate %s version %d", c.ID, c.Version)
	}
	c.Version++
	return errors.Wrap(txn.Insert(candidatesTable, c.DeepCopy()), "updating candidate")
}

func (s *MemStore) DeleteCandidate(_ context.Context, id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(candidatesTable, idIndex, id)
	if err != nil {
		return errors.Wrap(err, "reading candidate")
	}
	if raw == nil {
		return errors.Wrapf(domain.ErrNotFound, "candidate %s", id)
	}
	if err := deleteOwned(txn, id); err != nil {
		return err
	}
	if err := txn.Delete(candidatesTable, raw); err != nil {
		return errors.Wrap(err, "deleting candidate")
	}
	txn.Commit()
	return nil
}

func (s *MemStore) ListCandidates(_ context.Context, jobID string, filter CandidateFilter) ([]*domain.Candidate, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	all, err := collect[*domain.Candidate](txn, candidatesTable, jobIndex, jobID)
	if err != nil {
		return nil, err
	}
	var out []*domain.Candidate
	for _, c := range all {
		if !matchesFilter(c, filter) {
			continue
		}
		out = append(out, c.DeepCopy())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func matchesFilter(c *domain.Candidate, filter CandidateFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if c.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Email), needle) {
			return false
		}
	}
	return true
}

// CreateInterview inserts the interview and applies the candidate update,
// if any, in a single transaction so the side-effect transition commits
// with the interview row or not at all.
func (s *MemStore) CreateInterview(_ context.Context, iv *domain.Interview, candidate *domain.Candidate) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	iv.Version = 1
	if err := txn.Insert(interviewsTable, iv.DeepCopy()); err != nil {
		return errors.Wrap(err, "inserting interview")
	}
	if candidate != nil {
		if err := updateCandidateTxn(txn, candidate); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

func (s *MemStore) GetInterview(_ context.Context, id string) (*domain.Interview, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(interviewsTable, idIndex, id)
	if err != nil {
		return nil, errors.Wrap(err, "reading interview")
	}
	if raw == nil {
		return nil, errors.Wrapf(domain.ErrNotFound, "interview %s", id)
	}
	return raw.(*domain.Interview).DeepCopy(), nil
}

func (s *MemStore) UpdateInterview(_ context.Context, iv *domain.Interview) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(interviewsTable, idIndex, iv.ID)
	if err != nil {
		return errors.Wrap(err, "reading interview")
	}
	if raw == nil {
		return errors.Wrapf(domain.ErrNotFound, "interview %s", iv.ID)
	}
	if raw.(*domain.Interview).Version != iv.Version {
		return errors.Wrapf(domain.ErrConcurrencyConflict, "interview %s version %d", iv.ID, iv.Version)
	}
	iv.Version++
	if err := txn.Insert(interviewsTable, iv.DeepCopy()); err != nil {
		return errors.Wrap(err, "updating interview")
	}
	txn.Commit()
	return nil
}

func (s *MemStore) ListInterviews(_ context.Context, candidateID string) ([]*domain.Interview, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	all, err := collect[*domain.Interview](txn, interviewsTable, candidateIndex, candidateID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Interview, 0, len(all))
	for _, iv := range all {
		out = append(out, iv.DeepCopy())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *MemStore) CreateNote(_ context.Context, note *domain.Note) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(notesTable, note.DeepCopy()); err != nil {
		return errors.Wrap(err, "inserting note")
	}
	txn.Commit()
	return nil
}

func (s *MemStore) ListNotes(_ context.Context, candidateID string) ([]*domain.Note, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	all, err := collect[*domain.Note](txn, notesTable, candidateIndex, candidateID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Note, 0, len(all))
	for _, n := range all {
		out = append(out, n.DeepCopy())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// deleteOwned removes everything owned by a candidate.
func deleteOwned(txn *memdb.Txn, candidateID string) error {
	interviews, err := collect[*domain.Interview](txn, interviewsTable, candidateIndex, candidateID)
	if err != nil {
		return err
	}
	for _, iv := range interviews {
		if err := txn.Delete(interviewsTable, iv); err != nil {
			return errors.Wrap(err, "deleting interview")
		}
	}
	notes, err := collect[*domain.Note](txn, notesTable, candidateIndex, candidateID)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if err := txn.Delete(notesTable, n); err != nil {
			return errors.Wrap(err, "deleting note")
		}
	}
	return nil
}

// collect drains an index iterator into a slice. Deleting while iterating
// a radix iterator is unsafe, so cascades snapshot first.
func collect[T any](txn *memdb.Txn, table, index string, args ...interface{}) ([]T, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "iterating %s", table)
	}
	var out []T
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(T))
	}
	return out, nil
}
