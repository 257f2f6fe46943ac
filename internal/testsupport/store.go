package testsupport

import (
	"context"
	"testing"

	"steward/internal/config"
	"steward/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewUser creates an account for tests using the provided store.
func NewUser(t testing.TB, st *store.Store, username string, role store.Role) *store.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), &store.User{
		Username:     username,
		Email:        username + "@shop.test",
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("store.CreateUser: %v", err)
	}
	return user
}

// NewJob creates a job for tests using the provided store.
func NewJob(t testing.TB, st *store.Store, jobNumber, title string) *store.Job {
	t.Helper()

	job, err := st.CreateJob(context.Background(), &store.Job{
		JobNumber: jobNumber,
		Title:     title,
	})
	if err != nil {
		t.Fatalf("store.CreateJob: %v", err)
	}
	return job
}
