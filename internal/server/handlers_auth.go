package server

import (
	"errors"
	"net/http"
	"time"

	"steward/internal/auth"
	"steward/internal/store"
)

// userView is the wire shape of an account. The password hash never leaves
// the store layer.
type userView struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	Role      store.Role `json:"role"`
	Skills    []string   `json:"skills,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func viewUser(user *store.User) userView {
	return userView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		Skills:    user.Skills,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := s.store.UserByUsername(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil || !user.Active || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  viewUser(user),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	user, err := s.store.UserByID(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, errors.New("account no longer exists"))
		return
	}
	writeJSON(w, http.StatusOK, viewUser(user))
}
