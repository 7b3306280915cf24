package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	middleware "github.com/mediora-ai/mediora/internal/api/middlewares"
	"github.com/mediora-ai/mediora/internal/core"
	"github.com/mediora-ai/mediora/internal/models"
	"github.com/mediora-ai/mediora/internal/pipeline"
)

// JobHandler is the thin HTTP surface the external dispatch layers call.
type JobHandler struct {
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
}

func NewJobHandler(orchestrator *pipeline.Orchestrator, logger *slog.Logger) *JobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandler{orchestrator: orchestrator, log: logger}
}

// StartJob runs a job to completion and returns its final state. Starting
// a job already processing or settled returns the current state.
func (h *JobHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}
	jobID := chi.URLParam(r, "job_id")

	job, err := h.orchestrator.StartJob(r.Context(), jobID, userID)
	if err != nil {
		h.writeError(w, jobID, err)
		return
	}
	writeJSON(w, job)
}

// GetJob fetches one job.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}
	jobID := chi.URLParam(r, "job_id")

	job, err := h.orchestrator.GetJob(r.Context(), jobID, userID)
	if err != nil {
		h.writeError(w, jobID, err)
		return
	}
	writeJSON(w, job)
}

// ListJobs lists the caller's jobs, optionally filtered by ?status=.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	status := models.JobStatus(r.URL.Query().Get("status"))
	jobs, err := h.orchestrator.ListJobs(r.Context(), userID, status)
	if err != nil {
		h.writeError(w, "", err)
		return
	}
	if jobs == nil {
		jobs = []models.ProcessingJob{}
	}
	writeJSON(w, jobs)
}

func (h *JobHandler) writeError(w http.ResponseWriter, jobID string, err error) {
	switch {
	case errors.Is(err, core.ErrJobNotFound):
		http.Error(w, "job not found", http.StatusNotFound)
	case errors.Is(err, core.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		h.log.Error("job request failed", "job", jobID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
