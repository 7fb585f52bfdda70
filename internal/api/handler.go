package api

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"recruitflow/internal/domain"
	"recruitflow/internal/pipeline"
)

// API exposes the pipeline engine's operations over JSON. It is thin
// glue: every rule lives in the engine, the handlers only decode
// requests and map the error taxonomy onto status codes.
type API struct {
	engine *pipeline.Engine
	log    logrus.FieldLogger
}

func NewAPI(engine *pipeline.Engine, log logrus.FieldLogger) *API {
	return &API{engine: engine, log: log}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.log.WithError(err).Error("encoding response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the engine's error taxonomy onto HTTP status codes.
func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrPastDate),
		errors.Is(err, domain.ErrUnparsableDocument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCandidateTerminal),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrConcurrencyConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		a.log.WithError(err).Error("request failed")
	}
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return false
	}
	return true
}
