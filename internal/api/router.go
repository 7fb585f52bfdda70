package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Jobs
	mux.HandleFunc("POST /api/jobs", a.CreateJobHandler)
	mux.HandleFunc("GET /api/jobs", a.ListJobsHandler)
	mux.HandleFunc("GET /api/jobs/{id}", a.GetJobHandler)
	mux.HandleFunc("PATCH /api/jobs/{id}/status", a.UpdateJobStatusHandler)
	mux.HandleFunc("DELETE /api/jobs/{id}", a.DeleteJobHandler)
	mux.HandleFunc("POST /api/jobs/{id}/ingest", a.IngestHandler)
	mux.HandleFunc("GET /api/jobs/{id}/candidates", a.ListCandidatesHandler)
	mux.HandleFunc("GET /api/jobs/{id}/snapshot", a.SnapshotHandler)

	// Candidates
	mux.HandleFunc("POST /api/candidates", a.AddCandidateHandler)
	mux.HandleFunc("GET /api/candidates/{id}", a.GetCandidateHandler)
	mux.HandleFunc("PATCH /api/candidates/{id}/status", a.UpdateCandidateStatusHandler)
	mux.HandleFunc("DELETE /api/candidates/{id}", a.DeleteCandidateHandler)
	mux.HandleFunc("POST /api/candidates/{id}/notes", a.AddNoteHandler)
	mux.HandleFunc("GET /api/candidates/{id}/notes", a.ListNotesHandler)

	// Interviews
	mux.HandleFunc("POST /api/candidates/{id}/interviews", a.ScheduleInterviewHandler)
	mux.HandleFunc("GET /api/candidates/{id}/interviews", a.ListInterviewsHandler)
	mux.HandleFunc("PATCH /api/interviews/{id}/outcome", a.RecordOutcomeHandler)
	mux.HandleFunc("PATCH /api/interviews/{id}/reschedule", a.RescheduleHandler)

	return mux
}
