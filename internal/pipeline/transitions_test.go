package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitflow/internal/domain"
	"recruitflow/internal/notify"
	"recruitflow/internal/storage"
)

func TestUpdateCandidateStatus(t *testing.T) {
	e, store, recorder := newTestEngine(t, extractionsByContent(nil))
	job := createTestJob(t, e)
	c := addTestCandidate(t, e, job.ID, "jane@example.com")

	updated, err := e.UpdateCandidateStatus(t.Context(), c.ID, domain.StatusToContact)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToContact, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, domain.StatusToContact, updated.StatusHistory[1].Status)

	persisted, err := store.GetCandidate(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToContact, persisted.Status)

	assert.Contains(t, recorder.kinds(), notify.EventCandidateStatusChanged)
}

func TestUpdateCandidateStatusTerminalRejectsEveryTarget(t *testing.T) {
	e, store, _ := newTestEngine(t, extractionsByContent(nil))
	job := createTestJob(t, e)
	c := addTestCandidate(t, e, job.ID, "jane@example.com")

	_, err := e.UpdateCandidateStatus(t.Context(), c.ID, domain.StatusHired)
	require.NoError(t, err)

	for _, target := range domain.CandidateStatuses() {
		_, err := e.UpdateCandidateStatus(t.Context(), c.ID, target)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "hired -> %s", target)
	}

	got, err := store.GetCandidate(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHired, got.Status)
	assert.Len(t, got.StatusHistory, 2)
}

func TestUpdateCandidateStatusUnknownCandidate(t *testing.T) {
	e, _, _ := newTestEngine(t, extractionsByContent(nil))
	_, err := e.UpdateCandidateStatus(t.Context(), "missing", domain.StatusHired)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateCandidateStatusUpdatesLastActivity(t *testing.T) {
	e, _, _ := newTestEngine(t, extractionsByContent(nil))
	job := createTestJob(t, e)
	c := addTestCandidate(t, e, job.ID, "jane@example.com")

	later := time.Now().UTC().Add(time.Hour)
	e.now = func() time.Time { return later }

	updated, err := e.UpdateCandidateStatus(t.Context(), c.ID, domain.StatusToContact)
	require.NoError(t, err)
	assert.Equal(t, later, updated.LastActivity)
	assert.Equal(t, later, updated.StatusHistory[1].EnteredAt)
}

// flakyStore loses a configured number of optimistic writes before
// letting them through.
type flakyStore struct {
	storage.Store
	mu       sync.Mutex
	failures int
}

func (s *flakyStore) UpdateCandidate(ctx context.Context, c *domain.Candidate) error {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return errors.Wrap(domain.ErrConcurrencyConflict, "injected")
	}
	s.mu.Unlock()
	return s.Store.UpdateCandidate(ctx, c)
}

func TestUpdateCandidateStatusRetriesLostRaces(t *testing.T) {
	e, store, _ := newTestEngine(t, extractionsByContent(nil))
	job := createTestJob(t, e)
	c := addTestCandidate(t, e, job.ID, "jane@example.com")

	// two lost races, third attempt wins
	e.store = &flakyStore{Store: store, failures: 2}
	updated, err := e.UpdateCandidateStatus(t.Context(), c.ID, domain.StatusToContact)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToContact, updated.Status)
}

func TestUpdateCandidateStatusSurfacesExhaustedConflict(t *testing.T) {
	e, store, _ := newTestEngine(t, extractionsByContent(nil))
	job := createTestJob(t, e)
	c := addTestCandidate(t, e, job.ID, "jane@example.com")

	e.store = &flakyStore{Store: store, failures: 10}
	_, err := e.UpdateCandidateStatus(t.Context(), c.ID, domain.StatusToContact)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	// the losing writer left no partial state behind
	got, err := store.GetCandidate(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, got.Status)
	assert.Len(t, got.StatusHistory, 1)
}

func TestConcurrentTransitionsCommitExactlyOnePerVersion(t *testing.T) {
	e, store, _ := newTestEngine(t, extractionsByContent(nil))
	job := createTestJob(t, e)
	c := addTestCandidate(t, e, job.ID, "jane@example.com")

	// two stale copies of the same version race; the store accepts one
	a, err := store.GetCandidate(t.Context(), c.ID)
	require.NoError(t, err)
	b, err := store.GetCandidate(t.Context(), c.ID)
	require.NoError(t, err)

	require.NoError(t, a.TransitionTo(domain.StatusToContact, time.Now()))
	require.NoError(t, b.TransitionTo(domain.StatusRejected, time.Now()))

	errA := store.UpdateCandidate(t.Context(), a)
	errB := store.UpdateCandidate(t.Context(), b)
	require.NoError(t, errA)
	assert.ErrorIs(t, errB, domain.ErrConcurrencyConflict)

	got, err := store.GetCandidate(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusToContact, got.Status)
	assert.Len(t, got.StatusHistory, 2)
}
