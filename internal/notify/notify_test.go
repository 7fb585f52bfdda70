package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestWebhookDispatcherPostsEvent(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		received <- ev
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewWebhookDispatcher(srv.URL, testLogger())
	d.Notify(t.Context(), Event{
		Kind:        EventCandidateCreated,
		JobID:       "j1",
		CandidateID: "c1",
		OccurredAt:  time.Now().UTC(),
	})

	select {
	case ev := <-received:
		assert.Equal(t, EventCandidateCreated, ev.Kind)
		assert.Equal(t, "c1", ev.CandidateID)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never called")
	}
}

func TestWebhookDispatcherSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewWebhookDispatcher(srv.URL, testLogger())
	// must not panic or block the caller
	d.Notify(t.Context(), Event{Kind: EventInterviewClosed})
	time.Sleep(50 * time.Millisecond)
}
