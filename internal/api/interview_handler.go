package api

import (
	"net/http"
	"time"

	"recruitflow/internal/domain"
	"recruitflow/internal/pipeline"
)

type scheduleInterviewRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Interviewer string    `json:"interviewer"`
	Location    string    `json:"location"`
	Kind        string    `json:"kind"`
}

// ScheduleInterviewHandler books an interview for a candidate
// @Summary Schedule interview
// @Description Books an interview; a candidate not yet in the interview status transitions atomically
// @Tags interviews
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param interview body scheduleInterviewRequest true "Interview"
// @Success 201 {object} domain.Interview
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /candidates/{id}/interviews [post]
func (a *API) ScheduleInterviewHandler(w http.ResponseWriter, r *http.Request) {
	var req scheduleInterviewRequest
	if !a.decode(w, r, &req) {
		return
	}
	interview, err := a.engine.ScheduleInterview(r.Context(), pipeline.ScheduleInterviewRequest{
		CandidateID: r.PathValue("id"),
		ScheduledAt: req.ScheduledAt,
		Interviewer: req.Interviewer,
		Location:    req.Location,
		Kind:        req.Kind,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, interview)
}

// ListInterviewsHandler returns a candidate's interviews
// @Summary List interviews
// @Tags interviews
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {array} domain.Interview
// @Failure 404 {object} errorResponse
// @Router /candidates/{id}/interviews [get]
func (a *API) ListInterviewsHandler(w http.ResponseWriter, r *http.Request) {
	interviews, err := a.engine.ListInterviews(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, interviews)
}

type recordOutcomeRequest struct {
	Outcome  string `json:"outcome"`
	Feedback string `json:"feedback"`
}

// RecordOutcomeHandler closes a scheduled interview
// @Summary Record interview outcome
// @Description Moves a scheduled interview to completed, canceled or noShow; feedback implies completed
// @Tags interviews
// @Accept json
// @Produce json
// @Param id path string true "Interview ID"
// @Param outcome body recordOutcomeRequest true "Outcome"
// @Success 200 {object} domain.Interview
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /interviews/{id}/outcome [patch]
func (a *API) RecordOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	var req recordOutcomeRequest
	if !a.decode(w, r, &req) {
		return
	}
	interview, err := a.engine.RecordInterviewOutcome(r.Context(), r.PathValue("id"),
		domain.InterviewStatus(req.Outcome), req.Feedback)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, interview)
}

type rescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// RescheduleHandler moves a scheduled interview to a new time
// @Summary Reschedule interview
// @Description Date-only update; does not change the interview status
// @Tags interviews
// @Accept json
// @Produce json
// @Param id path string true "Interview ID"
// @Param time body rescheduleRequest true "New time"
// @Success 200 {object} domain.Interview
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /interviews/{id}/reschedule [patch]
func (a *API) RescheduleHandler(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if !a.decode(w, r, &req) {
		return
	}
	interview, err := a.engine.RescheduleInterview(r.Context(), r.PathValue("id"), req.ScheduledAt)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, interview)
}
