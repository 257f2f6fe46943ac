package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"steward/internal/store"
)

type jobRequest struct {
	JobNumber   string          `json:"job_number"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Customer    string          `json:"customer"`
	Priority    store.Priority  `json:"priority"`
	Status      store.JobStatus `json:"status"`
	Deadline    *time.Time      `json:"deadline"`
	Files       []string        `json:"files"`
	AssignedTo  string          `json:"assigned_to"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var statuses []store.JobStatus
	if status := r.URL.Query().Get("status"); status != "" {
		statuses = append(statuses, store.JobStatus(status))
	}
	jobs, err := s.store.ListJobs(r.Context(), statuses...)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	claims := claimsFrom(r.Context())

	job, err := s.store.CreateJob(r.Context(), &store.Job{
		JobNumber:   req.JobNumber,
		Title:       req.Title,
		Description: req.Description,
		Customer:    req.Customer,
		Priority:    req.Priority,
		Status:      req.Status,
		Deadline:    req.Deadline,
		Files:       req.Files,
		CreatedBy:   claims.Username,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.audit(r, "job", job.ID, "created", map[string]any{"job_number": job.JobNumber})
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.JobByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, errors.New("job not found"))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.JobByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, errors.New("job not found"))
		return
	}

	var req jobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if req.JobNumber != "" {
		job.JobNumber = req.JobNumber
	}
	if req.Title != "" {
		job.Title = req.Title
	}
	job.Description = req.Description
	job.Customer = req.Customer
	if req.Priority != "" {
		job.Priority = req.Priority
	}
	if req.Status != "" {
		job.Status = req.Status
	}
	job.Deadline = req.Deadline
	if req.Files != nil {
		job.Files = req.Files
	}
	job.AssignedTo = req.AssignedTo

	if err := s.store.UpdateJob(r.Context(), job); err != nil {
		writeServiceError(w, err)
		return
	}
	s.audit(r, "job", job.ID, "updated", map[string]any{"status": string(job.Status)})
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := s.store.DeleteJob(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("job not found"))
		return
	}
	s.audit(r, "job", id, "deleted", nil)
	w.WriteHeader(http.StatusNoContent)
}
