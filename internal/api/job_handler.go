package api

import (
	"io"
	"net/http"

	"recruitflow/internal/domain"
	"recruitflow/internal/pipeline"
)

// CreateJobHandler creates a hiring requisition
// @Summary Create job
// @Description Create a job with required skills and pipeline stage labels
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body pipeline.CreateJobRequest true "Job definition"
// @Success 201 {object} domain.Job
// @Failure 400 {object} errorResponse
// @Router /jobs [post]
func (a *API) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	var req pipeline.CreateJobRequest
	if !a.decode(w, r, &req) {
		return
	}
	job, err := a.engine.CreateJob(r.Context(), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, job)
}

// GetJobHandler fetches one job
// @Summary Get job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.Job
// @Failure 404 {object} errorResponse
// @Router /jobs/{id} [get]
func (a *API) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	job, err := a.engine.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, job)
}

// ListJobsHandler lists all jobs
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} domain.Job
// @Router /jobs [get]
func (a *API) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.engine.ListJobs(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, jobs)
}

type updateJobStatusRequest struct {
	Status string `json:"status"`
}

// UpdateJobStatusHandler moves a job between active, draft and closed
// @Summary Update job status
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param status body updateJobStatusRequest true "New status"
// @Success 200 {object} domain.Job
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /jobs/{id}/status [patch]
func (a *API) UpdateJobStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req updateJobStatusRequest
	if !a.decode(w, r, &req) {
		return
	}
	job, err := a.engine.UpdateJobStatus(r.Context(), r.PathValue("id"), domain.JobStatus(req.Status))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, job)
}

// DeleteJobHandler deletes a job and cascades to its candidates
// @Summary Delete job
// @Tags jobs
// @Param id path string true "Job ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /jobs/{id} [delete]
func (a *API) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.DeleteJob(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IngestHandler uploads a resume batch for scoring
// @Summary Ingest resumes
// @Description Upload one or more resume files (PDF/DOC/DOCX) to score against a job
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Job ID"
// @Param files formData file true "Resume files"
// @Success 200 {object} pipeline.BatchResult
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /jobs/{id}/ingest [post]
func (a *API) IngestHandler(w http.ResponseWriter, r *http.Request) {
	// 32MB batch limit
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form (max 32MB)"})
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no files uploaded"})
		return
	}

	docs := make([]pipeline.Document, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable file " + header.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable file " + header.Filename})
			return
		}
		docs = append(docs, pipeline.Document{
			DocumentID: header.Filename,
			Bytes:      data,
			MimeType:   header.Header.Get("Content-Type"),
		})
	}

	result, err := a.engine.IngestCandidates(r.Context(), r.PathValue("id"), docs)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, result)
}

// SnapshotHandler returns pipeline analytics for a job
// @Summary Pipeline snapshot
// @Description Stage counts, conversion rate and average days per stage
// @Tags analytics
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} pipeline.Snapshot
// @Failure 404 {object} errorResponse
// @Router /jobs/{id}/snapshot [get]
func (a *API) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.engine.PipelineSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, snapshot)
}
