package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"steward/internal/services"
	"steward/internal/store"
	"steward/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	user, err := st.CreateUser(ctx, &store.User{
		Username:     "dale",
		Email:        "dale@shop.test",
		PasswordHash: "hash",
		Role:         store.RoleHubMaster,
		Skills:       []string{"5-axis", "edm"},
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user ID to be assigned")
	}

	fetched, err := st.UserByUsername(ctx, "dale")
	if err != nil {
		t.Fatalf("UserByUsername failed: %v", err)
	}
	if fetched == nil || fetched.ID != user.ID {
		t.Fatalf("unexpected fetched user: %#v", fetched)
	}
	if len(fetched.Skills) != 2 || fetched.Skills[0] != "5-axis" {
		t.Fatalf("skills did not round-trip: %#v", fetched.Skills)
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	testsupport.NewUser(t, st, "dale", store.RoleHubCap)
	_, err := st.CreateUser(context.Background(), &store.User{
		Username:     "dale",
		Email:        "other@shop.test",
		PasswordHash: "hash",
		Role:         store.RoleHubCap,
	})
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.CreateUser(context.Background(), &store.User{
		Username:     "dale",
		Email:        "dale@shop.test",
		PasswordHash: "hash",
		Role:         "foreman",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeactivateUserKeepsRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	user := testsupport.NewUser(t, st, "dale", store.RoleHubCap)

	ok, err := st.DeactivateUser(ctx, user.ID)
	if err != nil || !ok {
		t.Fatalf("DeactivateUser: ok=%v err=%v", ok, err)
	}
	fetched, err := st.UserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if fetched == nil || fetched.Active {
		t.Fatalf("user should remain but be inactive: %#v", fetched)
	}
}

func TestJobLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	deadline := time.Now().Add(72 * time.Hour).UTC()
	job, err := st.CreateJob(ctx, &store.Job{
		JobNumber: "J-1001",
		Title:     "Valve body run",
		Customer:  "Acme Corp",
		Priority:  store.PriorityHigh,
		Deadline:  &deadline,
		Files:     []string{"CAD/AC-100_REV-B_bracket.sldprt"},
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.Status != store.JobPending {
		t.Fatalf("new job status = %q", job.Status)
	}
	if job.Deadline == nil {
		t.Fatal("deadline did not round-trip")
	}

	job.Status = store.JobInProgress
	job.AssignedTo = "dale"
	if err := st.UpdateJob(ctx, job); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	active, err := st.ListJobs(ctx, store.JobInProgress)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(active) != 1 || active[0].AssignedTo != "dale" {
		t.Fatalf("unexpected in-progress jobs: %#v", active)
	}

	stats, err := st.JobStats(ctx)
	if err != nil {
		t.Fatalf("JobStats: %v", err)
	}
	if stats[store.JobInProgress] != 1 {
		t.Fatalf("stats = %#v", stats)
	}
}

func TestCreateJobRejectsDuplicateNumber(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	testsupport.NewJob(t, st, "J-1001", "First")
	_, err := st.CreateJob(context.Background(), &store.Job{JobNumber: "J-1001", Title: "Second"})
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, st, "J-1001", "Valve body run")
	task, err := st.CreateTask(ctx, &store.Task{
		JobID:          job.ID,
		Title:          "Program op10",
		Type:           store.TaskProgramming,
		EstimatedHours: 4,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != store.TaskPending || task.Priority != store.PriorityMedium {
		t.Fatalf("unexpected defaults: %#v", task)
	}

	task.Status = store.TaskInProgress
	task.Assignee = "dale"
	task.ActualHours = 1.5
	if err := st.UpdateTask(ctx, task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	updated, err := st.AddTaskComment(ctx, task.ID, store.Comment{Author: "dale", Text: "fixture mounted"})
	if err != nil {
		t.Fatalf("AddTaskComment: %v", err)
	}
	if len(updated.Comments) != 1 || updated.Comments[0].Text != "fixture mounted" {
		t.Fatalf("comments = %#v", updated.Comments)
	}

	tasks, err := st.ListTasks(ctx, job.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ActualHours != 1.5 {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
}

func TestJobEnumValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	_, err := st.CreateJob(ctx, &store.Job{JobNumber: "J-1001", Title: "Bad status", Status: "paused"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	job := testsupport.NewJob(t, st, "J-1002", "Valve body run")
	job.Status = "paused"
	if err := st.UpdateJob(ctx, job); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	job.Status = store.JobInProgress
	job.Priority = "whenever"
	if err := st.UpdateJob(ctx, job); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	fetched, err := st.JobByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("JobByID: %v", err)
	}
	if fetched.Status != store.JobPending || fetched.Priority != store.PriorityMedium {
		t.Fatalf("rejected update was persisted: %#v", fetched)
	}
}

func TestTaskEnumValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, st, "J-1001", "Valve body run")
	if _, err := st.CreateTask(ctx, &store.Task{JobID: job.ID, Title: "op10", Type: "deburring"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected task type validation error, got %v", err)
	}
	if _, err := st.CreateTask(ctx, &store.Task{JobID: job.ID, Title: "op10", Status: "paused"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected task status validation error, got %v", err)
	}

	task, err := st.CreateTask(ctx, &store.Task{JobID: job.ID, Title: "op10"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	task.Status = "paused"
	if err := st.UpdateTask(ctx, task); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTaskRequiresExistingJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.CreateTask(context.Background(), &store.Task{JobID: "nope", Title: "orphan"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDeleteJobRemovesTasks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, st, "J-1001", "Valve body run")
	if _, err := st.CreateTask(ctx, &store.Task{JobID: job.ID, Title: "op10"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	ok, err := st.DeleteJob(ctx, job.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteJob: ok=%v err=%v", ok, err)
	}
	tasks, err := st.ListTasks(ctx, job.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("tasks should be gone, got %#v", tasks)
	}
}

func TestModuleRegistry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	module := &store.Module{
		Name:        "organizer",
		DisplayName: "File Organizer",
		Version:     "1.0.0",
		Status:      store.ModuleActive,
		Config:      map[string]any{"hierarchical": false},
	}
	if err := st.UpsertModule(ctx, module); err != nil {
		t.Fatalf("UpsertModule: %v", err)
	}

	if err := st.TouchModuleRun(ctx, "organizer", map[string]any{"files_organized": float64(12)}); err != nil {
		t.Fatalf("TouchModuleRun: %v", err)
	}

	fetched, err := st.ModuleByName(ctx, "organizer")
	if err != nil {
		t.Fatalf("ModuleByName: %v", err)
	}
	if fetched == nil || fetched.LastRun == nil {
		t.Fatalf("module run not recorded: %#v", fetched)
	}
	if fetched.Metrics["files_organized"] != float64(12) {
		t.Fatalf("metrics = %#v", fetched.Metrics)
	}

	ok, err := st.SetModuleStatus(ctx, "organizer", store.ModuleInactive)
	if err != nil || !ok {
		t.Fatalf("SetModuleStatus: ok=%v err=%v", ok, err)
	}
	modules, err := st.ListModules(ctx)
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	if len(modules) != 1 || modules[0].Status != store.ModuleInactive {
		t.Fatalf("unexpected modules: %#v", modules)
	}
}

func TestActivityAuditTrail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, action := range []string{"moved", "renamed", "held"} {
		if err := st.RecordActivity(ctx, &store.Activity{
			EntityType: "file",
			EntityID:   "bracket.step",
			Action:     action,
			Actor:      "organizer",
			Details:    map[string]any{"destination": "CAD"},
		}); err != nil {
			t.Fatalf("RecordActivity(%s): %v", action, err)
		}
	}

	items, err := st.RecentActivity(ctx, "file", 10)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 audit rows, got %d", len(items))
	}
	if items[0].Action != "held" {
		t.Fatalf("rows not newest-first: %#v", items[0])
	}
	if items[0].Details["destination"] != "CAD" {
		t.Fatalf("details = %#v", items[0].Details)
	}

	pruned, err := st.PruneActivity(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("PruneActivity: %v", err)
	}
	if pruned != 3 {
		t.Fatalf("pruned = %d, want 3", pruned)
	}
}
