package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionToAppendsHistory(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := &Candidate{
		ID:            "c1",
		Status:        StatusNew,
		StatusHistory: []StatusEntry{{Status: StatusNew, EnteredAt: now.Add(-time.Hour)}},
	}

	require.NoError(t, c.TransitionTo(StatusToContact, now))
	assert.Equal(t, StatusToContact, c.Status)
	require.Len(t, c.StatusHistory, 2)
	assert.Equal(t, StatusToContact, c.StatusHistory[1].Status)
	assert.Equal(t, now, c.StatusHistory[1].EnteredAt)
	assert.Equal(t, now, c.LastActivity)
}

func TestTransitionToRejectsSameStatus(t *testing.T) {
	c := &Candidate{ID: "c1", Status: StatusToContact}
	err := c.TransitionTo(StatusToContact, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionToRejectsUnknownStatus(t *testing.T) {
	c := &Candidate{ID: "c1", Status: StatusNew}
	err := c.TransitionTo(CandidateStatus("archived"), time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTerminalCandidatesRejectEveryTarget(t *testing.T) {
	for _, from := range []CandidateStatus{StatusHired, StatusRejected} {
		for _, target := range CandidateStatuses() {
			c := &Candidate{ID: "c1", Status: from}
			err := c.TransitionTo(target, time.Now())
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, target)
			assert.Equal(t, from, c.Status)
			assert.Empty(t, c.StatusHistory)
		}
	}
}

func TestNonTerminalMayReachAnyOtherStatus(t *testing.T) {
	for _, from := range []CandidateStatus{StatusNew, StatusToContact, StatusInterview} {
		for _, target := range CandidateStatuses() {
			if target == from {
				continue
			}
			c := &Candidate{ID: "c1", Status: from}
			assert.NoError(t, c.TransitionTo(target, time.Now()), "%s -> %s", from, target)
		}
	}
}

func TestCandidateDeepCopyIsIndependent(t *testing.T) {
	c := &Candidate{
		ID:            "c1",
		Skills:        []string{"Go"},
		StatusHistory: []StatusEntry{{Status: StatusNew}},
	}
	cp := c.DeepCopy()
	cp.Skills[0] = "Rust"
	cp.StatusHistory[0].Status = StatusHired

	assert.Equal(t, "Go", c.Skills[0])
	assert.Equal(t, StatusNew, c.StatusHistory[0].Status)
}

func TestJobValidate(t *testing.T) {
	valid := &Job{Title: "Backend Engineer", PipelineStages: []string{"Inbox", "Phone Screen"}, Status: JobActive}
	require.NoError(t, valid.Validate())

	cases := []*Job{
		{Title: "  ", PipelineStages: []string{"Inbox"}, Status: JobActive},
		{Title: "Backend Engineer", Status: JobActive},
		{Title: "Backend Engineer", PipelineStages: []string{"Inbox", " "}, Status: JobActive},
		{Title: "Backend Engineer", PipelineStages: []string{"Inbox", "inbox"}, Status: JobActive},
		{Title: "Backend Engineer", PipelineStages: []string{"Inbox"}, Status: JobStatus("archived")},
	}
	for i, j := range cases {
		assert.ErrorIs(t, j.Validate(), ErrValidation, "case %d", i)
	}
}

func TestStageForStatus(t *testing.T) {
	j := &Job{PipelineStages: []string{"Inbox", "Outreach", "On-site"}}

	assert.Equal(t, "Inbox", j.StageForStatus(StatusNew))
	assert.Equal(t, "Outreach", j.StageForStatus(StatusToContact))
	assert.Equal(t, "On-site", j.StageForStatus(StatusInterview))
	// fewer labels than statuses: last label is reused
	assert.Equal(t, "On-site", j.StageForStatus(StatusHired))
	assert.Equal(t, "On-site", j.StageForStatus(StatusRejected))
}

func TestInterviewClose(t *testing.T) {
	iv := &Interview{ID: "i1", Status: InterviewScheduled}
	require.NoError(t, iv.Close(InterviewCompleted, "strong hire"))
	assert.Equal(t, InterviewCompleted, iv.Status)
	assert.Equal(t, "strong hire", iv.Feedback)

	// already closed
	err := iv.Close(InterviewCanceled, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	// scheduled is not a valid outcome
	iv = &Interview{ID: "i2", Status: InterviewScheduled}
	err = iv.Close(InterviewScheduled, "")
	assert.ErrorIs(t, err, ErrValidation)
}
