package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	httpclient "recruitflow/pkg/http"
)

// Event kinds emitted by the pipeline engine.
const (
	EventCandidateCreated       = "candidate.created"
	EventCandidateStatusChanged = "candidate.status_changed"
	EventInterviewScheduled     = "interview.scheduled"
	EventInterviewClosed        = "interview.closed"
)

// Event describes something that happened to a pipeline entity.
type Event struct {
	Kind        string    `json:"kind"`
	JobID       string    `json:"job_id,omitempty"`
	CandidateID string    `json:"candidate_id,omitempty"`
	InterviewID string    `json:"interview_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Dispatcher delivers events to interested outside systems (mailers,
// scheduling assistants, dashboards). Delivery is fire-and-forget: a
// failed dispatch must never affect the engine's committed state.
type Dispatcher interface {
	Notify(ctx context.Context, event Event)
}

// NopDispatcher drops every event. Used in tests and standalone mode.
type NopDispatcher struct{}

func (NopDispatcher) Notify(context.Context, Event) {}

// WebhookDispatcher posts events as JSON to a configured endpoint.
type WebhookDispatcher struct {
	url    string
	client *httpclient.Client
	log    logrus.FieldLogger
}

func NewWebhookDispatcher(url string, log logrus.FieldLogger) *WebhookDispatcher {
	return &WebhookDispatcher{
		url:    url,
		client: httpclient.NewClient(5 * time.Second),
		log:    log,
	}
}

// Notify posts the event in the background. Errors are logged and
// dropped.
func (d *WebhookDispatcher) Notify(_ context.Context, event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.client.PostJSON(ctx, d.url, event); err != nil {
			d.log.WithError(err).WithField("kind", event.Kind).Warn("webhook dispatch failed")
		}
	}()
}
