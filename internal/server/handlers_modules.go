package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"steward/internal/logging"
	"steward/internal/store"
)

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := s.store.ListModules(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (s *Server) setModuleStatus(w http.ResponseWriter, r *http.Request, status store.ModuleStatus, action string) {
	name := chi.URLParam(r, "name")
	ok, err := s.store.SetModuleStatus(r.Context(), name, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("module %q not registered", name))
		return
	}
	s.audit(r, "module", name, action, nil)
	module, err := s.store.ModuleByName(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

func (s *Server) handleModuleActivate(w http.ResponseWriter, r *http.Request) {
	s.setModuleStatus(w, r, store.ModuleActive, "activated")
}

func (s *Server) handleModuleDeactivate(w http.ResponseWriter, r *http.Request) {
	s.setModuleStatus(w, r, store.ModuleInactive, "deactivated")
}

// handleModuleRun triggers a module's work on demand. Only the organizer
// supports manual runs.
func (s *Server) handleModuleRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != "organizer" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("module %q does not support manual runs", name))
		return
	}
	if s.organizer == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("organizer not running"))
		return
	}

	stats, err := s.organizer.OrganizeNow(r.Context(), false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.audit(r, "module", name, "run", map[string]any{"stats": stats.String()})
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleOrganizeNow(w http.ResponseWriter, r *http.Request) {
	if s.organizer == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("organizer not running"))
		return
	}
	var req struct {
		DryRun bool `json:"dry_run"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	stats, err := s.organizer.OrganizeNow(r.Context(), req.DryRun)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !req.DryRun {
		s.audit(r, "organize", "", "run", map[string]any{"stats": stats.String()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"dry_run": req.DryRun, "stats": stats})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobStats, err := s.store.JobStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	modules, err := s.store.ListModules(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"root_dir":       s.cfg.Paths.RootDir,
		"watch_dir":      s.cfg.WatchDirOrRoot(),
		"jobs":           jobStats,
		"modules":        modules,
	})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
	}
	items, err := s.store.RecentActivity(r.Context(), r.URL.Query().Get("entity_type"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// audit records an activity row and pushes it to websocket subscribers.
// Failures are logged, never surfaced to the API caller.
func (s *Server) audit(r *http.Request, entityType, entityID, action string, details map[string]any) {
	actor := ""
	if claims := claimsFrom(r.Context()); claims != nil {
		actor = claims.Username
	}
	activity := &store.Activity{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      actor,
		Details:    details,
	}
	if err := s.store.RecordActivity(r.Context(), activity); err != nil {
		s.logger.Warn("failed to record activity", logging.Error(err))
		return
	}
	s.hub.Broadcast(Event{
		Type:       "activity",
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      actor,
		Details:    details,
	})
}
