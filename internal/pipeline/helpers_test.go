package pipeline

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"recruitflow/internal/cv"
	"recruitflow/internal/domain"
	"recruitflow/internal/notify"
	"recruitflow/internal/storage"
)

type analyzerFunc func(ctx context.Context, data []byte, mimeType string) (*cv.Extraction, error)

func (f analyzerFunc) Analyze(ctx context.Context, data []byte, mimeType string) (*cv.Extraction, error) {
	return f(ctx, data, mimeType)
}

// extractionsByContent resolves fixture extractions by document bytes.
func extractionsByContent(fixtures map[string]*cv.Extraction) analyzerFunc {
	return func(_ context.Context, data []byte, _ string) (*cv.Extraction, error) {
		if ex, ok := fixtures[string(data)]; ok {
			return ex, nil
		}
		return nil, errors.Wrap(domain.ErrUnparsableDocument, "unknown fixture")
	}
}

// eventRecorder captures dispatched events for assertions. Safe for
// concurrent use because ingestion notifies from worker goroutines.
type eventRecorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *eventRecorder) Notify(_ context.Context, event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func listAll() storage.CandidateFilter { return storage.CandidateFilter{} }

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEngine(t *testing.T, analyzer cv.DocumentAnalyzer) (*Engine, *storage.MemStore, *eventRecorder) {
	t.Helper()
	store, err := storage.NewMemStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	recorder := &eventRecorder{}
	engine := NewEngine(store, analyzer, recorder, testLogger(), Options{
		Workers:           4,
		AnalyzerTimeout:   2 * time.Second,
		TransitionRetries: 3,
	})
	return engine, store, recorder
}

func createTestJob(t *testing.T, e *Engine, skills ...string) *domain.Job {
	t.Helper()
	if len(skills) == 0 {
		skills = []string{"React", "Node.js"}
	}
	job, err := e.CreateJob(t.Context(), CreateJobRequest{
		Title:          "Backend Engineer",
		RequiredSkills: skills,
		PipelineStages: []string{"Inbox", "Outreach", "On-site", "Offer", "Done"},
	})
	require.NoError(t, err)
	return job
}

func addTestCandidate(t *testing.T, e *Engine, jobID, email string) *domain.Candidate {
	t.Helper()
	c, err := e.AddCandidate(t.Context(), AddCandidateRequest{
		JobID:  jobID,
		Name:   "Jane Doe",
		Email:  email,
		Skills: []string{"React"},
	})
	require.NoError(t, err)
	return c
}
