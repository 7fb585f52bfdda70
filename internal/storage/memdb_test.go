package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitflow/internal/domain"
)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	s, err := NewMemStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedJob(t *testing.T, s *MemStore, id string) *domain.Job {
	t.Helper()
	job := &domain.Job{
		ID:             id,
		Title:          "Backend Engineer",
		RequiredSkills: []string{"Go", "SQL"},
		PipelineStages: []string{"Inbox", "Outreach", "Interview", "Offer", "Closed"},
		Status:         domain.JobActive,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, s.CreateJob(t.Context(), job))
	return job
}

func seedCandidate(t *testing.T, s *MemStore, id, jobID, email string) *domain.Candidate {
	t.Helper()
	now := time.Now().UTC()
	c := &domain.Candidate{
		ID:            id,
		JobID:         jobID,
		Name:          "Jane Doe",
		Email:         email,
		Status:        domain.StatusNew,
		StatusHistory: []domain.StatusEntry{{Status: domain.StatusNew, EnteredAt: now}},
		LastActivity:  now,
		CreatedAt:     now,
	}
	require.NoError(t, s.CreateCandidate(t.Context(), c))
	return c
}

func TestJobRoundTrip(t *testing.T) {
	s := newTestStore(t)
	job := seedJob(t, s, "j1")
	assert.Equal(t, int64(1), job.Version)

	got, err := s.GetJob(t.Context(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Title)

	// reads return copies
	got.RequiredSkills[0] = "COBOL"
	again, err := s.GetJob(t.Context(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "Go", again.RequiredSkills[0])

	_, err = s.GetJob(t.Context(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateJobStaleVersion(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")

	a, err := s.GetJob(t.Context(), "j1")
	require.NoError(t, err)
	b, err := s.GetJob(t.Context(), "j1")
	require.NoError(t, err)

	a.Status = domain.JobClosed
	require.NoError(t, s.UpdateJob(t.Context(), a))
	assert.Equal(t, int64(2), a.Version)

	b.Status = domain.JobDraft
	err = s.UpdateJob(t.Context(), b)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	got, err := s.GetJob(t.Context(), "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobClosed, got.Status)
}

func TestCandidateOptimisticUpdate(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")
	seedCandidate(t, s, "c1", "j1", "jane@example.com")

	first, err := s.GetCandidate(t.Context(), "c1")
	require.NoError(t, err)
	second, err := s.GetCandidate(t.Context(), "c1")
	require.NoError(t, err)

	require.NoError(t, first.TransitionTo(domain.StatusToContact, time.Now()))
	require.NoError(t, s.UpdateCandidate(t.Context(), first))

	require.NoError(t, second.TransitionTo(domain.StatusRejected, time.Now()))
	err = s.UpdateCandidate(t.Context(), second)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	got, err := s.GetCandidate(t.Context(), "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToContact, got.Status)
	assert.Len(t, got.StatusHistory, 2)
}

func TestGetCandidateByEmailIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")
	seedJob(t, s, "j2")
	seedCandidate(t, s, "c1", "j1", "Jane@Example.com")

	got, err := s.GetCandidateByEmail(t.Context(), "j1", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)

	// same email under another job is a distinct candidate
	_, err = s.GetCandidateByEmail(t.Context(), "j2", "jane@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCandidatesFilter(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")
	c1 := seedCandidate(t, s, "c1", "j1", "jane@example.com")
	seedCandidate(t, s, "c2", "j1", "bob@example.com")

	require.NoError(t, c1.TransitionTo(domain.StatusToContact, time.Now()))
	require.NoError(t, s.UpdateCandidate(t.Context(), c1))

	all, err := s.ListCandidates(t.Context(), "j1", CandidateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byStatus, err := s.ListCandidates(t.Context(), "j1", CandidateFilter{
		Statuses: []domain.CandidateStatus{domain.StatusToContact},
	})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "c1", byStatus[0].ID)

	bySearch, err := s.ListCandidates(t.Context(), "j1", CandidateFilter{Search: "BOB"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "c2", bySearch[0].ID)
}

func TestCreateInterviewAtomicWithCandidate(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")
	seedCandidate(t, s, "c1", "j1", "jane@example.com")

	c, err := s.GetCandidate(t.Context(), "c1")
	require.NoError(t, err)
	require.NoError(t, c.TransitionTo(domain.StatusInterview, time.Now()))

	iv := &domain.Interview{
		ID:          "i1",
		CandidateID: "c1",
		JobID:       "j1",
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Interviewer: "lena",
		Status:      domain.InterviewScheduled,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.CreateInterview(t.Context(), iv, c))

	got, err := s.GetCandidate(t.Context(), "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterview, got.Status)

	ivs, err := s.ListInterviews(t.Context(), "c1")
	require.NoError(t, err)
	assert.Len(t, ivs, 1)
}

func TestCreateInterviewRollsBackOnStaleCandidate(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")
	seedCandidate(t, s, "c1", "j1", "jane@example.com")

	stale, err := s.GetCandidate(t.Context(), "c1")
	require.NoError(t, err)
	fresh, err := s.GetCandidate(t.Context(), "c1")
	require.NoError(t, err)
	require.NoError(t, fresh.TransitionTo(domain.StatusToContact, time.Now()))
	require.NoError(t, s.UpdateCandidate(t.Context(), fresh))

	require.NoError(t, stale.TransitionTo(domain.StatusInterview, time.Now()))
	iv := &domain.Interview{ID: "i1", CandidateID: "c1", JobID: "j1", Status: domain.InterviewScheduled}
	err = s.CreateInterview(t.Context(), iv, stale)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	// neither the interview nor the candidate update was committed
	ivs, err := s.ListInterviews(t.Context(), "c1")
	require.NoError(t, err)
	assert.Empty(t, ivs)
	got, err := s.GetCandidate(t.Context(), "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToContact, got.Status)
}

func TestDeleteJobCascades(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")
	seedCandidate(t, s, "c1", "j1", "jane@example.com")

	iv := &domain.Interview{ID: "i1", CandidateID: "c1", JobID: "j1", Status: domain.InterviewScheduled}
	require.NoError(t, s.CreateInterview(t.Context(), iv, nil))
	note := &domain.Note{ID: "n1", CandidateID: "c1", AuthorID: "lena", Text: "strong CV", CreatedAt: time.Now()}
	require.NoError(t, s.CreateNote(t.Context(), note))

	require.NoError(t, s.DeleteJob(t.Context(), "j1"))

	_, err := s.GetJob(t.Context(), "j1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetCandidate(t.Context(), "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetInterview(t.Context(), "i1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	notes, err := s.ListNotes(t.Context(), "c1")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestListNotesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")
	seedCandidate(t, s, "c1", "j1", "jane@example.com")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2", "n3"} {
		note := &domain.Note{
			ID:          id,
			CandidateID: "c1",
			AuthorID:    "lena",
			Text:        "note " + id,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.CreateNote(t.Context(), note))
	}

	notes, err := s.ListNotes(t.Context(), "c1")
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "n3", notes[0].ID)
	assert.Equal(t, "n1", notes[2].ID)
}

func TestUpdateInterviewStaleVersion(t *testing.T) {
	s := newTestStore(t)
	seedJob(t, s, "j1")
	seedCandidate(t, s, "c1", "j1", "jane@example.com")

	iv := &domain.Interview{ID: "i1", CandidateID: "c1", JobID: "j1", Status: domain.InterviewScheduled}
	require.NoError(t, s.CreateInterview(t.Context(), iv, nil))

	a, err := s.GetInterview(t.Context(), "i1")
	require.NoError(t, err)
	b, err := s.GetInterview(t.Context(), "i1")
	require.NoError(t, err)

	require.NoError(t, a.Close(domain.InterviewCompleted, "fine"))
	require.NoError(t, s.UpdateInterview(t.Context(), a))

	require.NoError(t, b.Close(domain.InterviewCanceled, ""))
	err = s.UpdateInterview(t.Context(), b)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}
