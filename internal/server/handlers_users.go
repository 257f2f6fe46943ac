package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"steward/internal/auth"
	"steward/internal/store"
)

type userRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Role     store.Role `json:"role"`
	Skills   []string   `json:"skills"`
	Active   *bool      `json:"active"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, viewUser(user))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, errors.New("password is required"))
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	user, err := s.store.CreateUser(r.Context(), &store.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
		Skills:       req.Skills,
		Active:       active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.audit(r, "user", user.ID, "created", map[string]any{"username": user.Username, "role": string(user.Role)})
	writeJSON(w, http.StatusCreated, viewUser(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.UserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}
	writeJSON(w, http.StatusOK, viewUser(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.UserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}

	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		user.PasswordHash = hash
	}
	user.FullName = req.FullName
	if req.Role != "" {
		if !store.ValidRole(req.Role) {
			writeError(w, http.StatusBadRequest, errors.New("unknown role"))
			return
		}
		user.Role = req.Role
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		writeServiceError(w, err)
		return
	}
	s.audit(r, "user", user.ID, "updated", nil)
	writeJSON(w, http.StatusOK, viewUser(user))
}

func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := s.store.DeactivateUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}
	s.audit(r, "user", id, "deactivated", nil)
	w.WriteHeader(http.StatusNoContent)
}
