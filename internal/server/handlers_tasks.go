package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"steward/internal/store"
)

type taskRequest struct {
	JobID          string           `json:"job_id"`
	Title          string           `json:"title"`
	Type           store.TaskType   `json:"type"`
	Status         store.TaskStatus `json:"status"`
	Priority       store.Priority   `json:"priority"`
	Assignee       string           `json:"assignee"`
	EstimatedHours float64          `json:"estimated_hours"`
	ActualHours    float64          `json:"actual_hours"`
	Dependencies   []string         `json:"dependencies"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context(), r.URL.Query().Get("job_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	task, err := s.store.CreateTask(r.Context(), &store.Task{
		JobID:          req.JobID,
		Title:          req.Title,
		Type:           req.Type,
		Status:         req.Status,
		Priority:       req.Priority,
		Assignee:       req.Assignee,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Dependencies:   req.Dependencies,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.audit(r, "task", task.ID, "created", map[string]any{"job_id": task.JobID})
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.TaskByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, errors.New("task not found"))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.TaskByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, errors.New("task not found"))
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Type != "" {
		task.Type = req.Type
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	task.Assignee = req.Assignee
	if req.EstimatedHours > 0 {
		task.EstimatedHours = req.EstimatedHours
	}
	if req.ActualHours > 0 {
		task.ActualHours = req.ActualHours
	}
	if req.Dependencies != nil {
		task.Dependencies = req.Dependencies
	}

	if err := s.store.UpdateTask(r.Context(), task); err != nil {
		writeServiceError(w, err)
		return
	}
	s.audit(r, "task", task.ID, "updated", map[string]any{"status": string(task.Status)})
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleAddTaskComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	claims := claimsFrom(r.Context())

	task, err := s.store.AddTaskComment(r.Context(), chi.URLParam(r, "id"), store.Comment{
		Author: claims.Username,
		Text:   req.Text,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.audit(r, "task", task.ID, "commented", nil)
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := s.store.DeleteTask(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("task not found"))
		return
	}
	s.audit(r, "task", id, "deleted", nil)
	w.WriteHeader(http.StatusNoContent)
}
