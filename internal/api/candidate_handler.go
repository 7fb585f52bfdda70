package api

import (
	"net/http"
	"strings"

	"recruitflow/internal/domain"
	"recruitflow/internal/pipeline"
	"recruitflow/internal/storage"
)

// AddCandidateHandler manually adds a candidate to a job
// @Summary Add candidate
// @Description Manual-add path; runs the same validation and scoring as batch ingestion
// @Tags candidates
// @Accept json
// @Produce json
// @Param candidate body pipeline.AddCandidateRequest true "Candidate"
// @Success 201 {object} domain.Candidate
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /candidates [post]
func (a *API) AddCandidateHandler(w http.ResponseWriter, r *http.Request) {
	var req pipeline.AddCandidateRequest
	if !a.decode(w, r, &req) {
		return
	}
	candidate, err := a.engine.AddCandidate(r.Context(), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, candidate)
}

// GetCandidateHandler fetches one candidate
// @Summary Get candidate
// @Tags candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} domain.Candidate
// @Failure 404 {object} errorResponse
// @Router /candidates/{id} [get]
func (a *API) GetCandidateHandler(w http.ResponseWriter, r *http.Request) {
	candidate, err := a.engine.GetCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, candidate)
}

// ListCandidatesHandler lists a job's candidates with optional filters
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Param id path string true "Job ID"
// @Param status query string false "Comma-separated status filter"
// @Param search query string false "Name or email search"
// @Success 200 {array} domain.Candidate
// @Failure 404 {object} errorResponse
// @Router /jobs/{id}/candidates [get]
func (a *API) ListCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	filter := storage.CandidateFilter{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, domain.CandidateStatus(strings.TrimSpace(s)))
		}
	}
	candidates, err := a.engine.ListCandidates(r.Context(), r.PathValue("id"), filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, candidates)
}

type updateCandidateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateCandidateStatusHandler drives the candidate state machine
// @Summary Update candidate status
// @Description Terminal candidates (hired, rejected) reject every transition
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param status body updateCandidateStatusRequest true "Target status"
// @Success 200 {object} domain.Candidate
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /candidates/{id}/status [patch]
func (a *API) UpdateCandidateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req updateCandidateStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	candidate, err := a.engine.UpdateCandidateStatus(r.Context(), r.PathValue("id"), domain.CandidateStatus(req.Status))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, candidate)
}

// DeleteCandidateHandler removes a candidate and everything it owns
// @Summary Delete candidate
// @Tags candidates
// @Param id path string true "Candidate ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /candidates/{id} [delete]
func (a *API) DeleteCandidateHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.DeleteCandidate(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addNoteRequest struct {
	Text     string `json:"text"`
	AuthorID string `json:"author_id"`
}

// AddNoteHandler appends an immutable note
// @Summary Add note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param note body addNoteRequest true "Note"
// @Success 201 {object} domain.Note
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /candidates/{id}/notes [post]
func (a *API) AddNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req addNoteRequest
	if !a.decode(w, r, &req) {
		return
	}
	note, err := a.engine.AddNote(r.Context(), r.PathValue("id"), req.Text, req.AuthorID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, note)
}

// ListNotesHandler returns a candidate's notes, newest first
// @Summary List notes
// @Tags notes
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {array} domain.Note
// @Failure 404 {object} errorResponse
// @Router /candidates/{id}/notes [get]
func (a *API) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	notes, err := a.engine.ListNotes(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, notes)
}
