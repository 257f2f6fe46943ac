package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"steward/internal/services"
)

const taskColumns = "id, job_id, title, type, status, priority, assignee, estimated_hours, actual_hours, dependencies_json, comments_json, created_at, updated_at"

// CreateTask inserts a task under an existing job.
func (s *Store) CreateTask(ctx context.Context, task *Task) (*Task, error) {
	if task == nil {
		return nil, errors.New("task is nil")
	}
	if strings.TrimSpace(task.JobID) == "" || strings.TrimSpace(task.Title) == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create task", "job id and title are required", nil)
	}
	job, err := s.JobByID(ctx, task.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "store", "create task", fmt.Sprintf("job %s not found", task.JobID), nil)
	}
	if task.Type == "" {
		task.Type = TaskOther
	}
	if task.Status == "" {
		task.Status = TaskPending
	}
	if task.Priority == "" {
		task.Priority = PriorityMedium
	}
	if err := validateTaskEnums(task, "create task"); err != nil {
		return nil, err
	}

	task.ID = uuid.NewString()
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	deps, err := marshalJSON(task.Dependencies)
	if err != nil {
		return nil, err
	}
	comments, err := marshalJSON(task.Comments)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.JobID,
		task.Title,
		task.Type,
		task.Status,
		task.Priority,
		nullableString(task.Assignee),
		task.EstimatedHours,
		task.ActualHours,
		deps,
		comments,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.TaskByID(ctx, task.ID)
}

// TaskByID fetches a task by identifier. Missing tasks return nil without
// error.
func (s *Store) TaskByID(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListTasks returns tasks, optionally restricted to one job, oldest first.
func (s *Store) ListTasks(ctx context.Context, jobID string) ([]*Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if jobID == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE job_id = ? ORDER BY created_at`, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask persists changes to an existing task.
func (s *Store) UpdateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task is nil")
	}
	if err := validateTaskEnums(task, "update task"); err != nil {
		return err
	}
	task.UpdatedAt = time.Now().UTC()

	deps, err := marshalJSON(task.Dependencies)
	if err != nil {
		return err
	}
	comments, err := marshalJSON(task.Comments)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE tasks
         SET title = ?, type = ?, status = ?, priority = ?, assignee = ?,
             estimated_hours = ?, actual_hours = ?, dependencies_json = ?,
             comments_json = ?, updated_at = ?
         WHERE id = ?`,
		task.Title,
		task.Type,
		task.Status,
		task.Priority,
		nullableString(task.Assignee),
		task.EstimatedHours,
		task.ActualHours,
		deps,
		comments,
		task.UpdatedAt.Format(time.RFC3339Nano),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// AddTaskComment appends a comment to a task.
func (s *Store) AddTaskComment(ctx context.Context, id string, comment Comment) (*Task, error) {
	task, err := s.TaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, services.Wrap(services.ErrNotFound, "store", "add comment", fmt.Sprintf("task %s not found", id), nil)
	}
	if comment.At.IsZero() {
		comment.At = time.Now().UTC()
	}
	task.Comments = append(task.Comments, comment)
	if err := s.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return s.TaskByID(ctx, id)
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func validateTaskEnums(task *Task, operation string) error {
	if !ValidTaskType(task.Type) {
		return services.Wrap(services.ErrValidation, "store", operation, fmt.Sprintf("unknown task type %q", task.Type), nil)
	}
	if !ValidTaskStatus(task.Status) {
		return services.Wrap(services.ErrValidation, "store", operation, fmt.Sprintf("unknown task status %q", task.Status), nil)
	}
	if !ValidPriority(task.Priority) {
		return services.Wrap(services.ErrValidation, "store", operation, fmt.Sprintf("unknown priority %q", task.Priority), nil)
	}
	return nil
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		id          string
		jobID       string
		title       string
		taskType    string
		status      string
		priority    string
		assignee    sql.NullString
		estimated   float64
		actual      float64
		depsRaw     sql.NullString
		commentsRaw sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &jobID, &title, &taskType, &status, &priority, &assignee, &estimated, &actual, &depsRaw, &commentsRaw, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	task := &Task{
		ID:             id,
		JobID:          jobID,
		Title:          title,
		Type:           TaskType(taskType),
		Status:         TaskStatus(status),
		Priority:       Priority(priority),
		Assignee:       assignee.String,
		EstimatedHours: estimated,
		ActualHours:    actual,
	}
	if err := unmarshalInto(depsRaw, &task.Dependencies); err != nil {
		return nil, fmt.Errorf("decode task dependencies: %w", err)
	}
	if err := unmarshalInto(commentsRaw, &task.Comments); err != nil {
		return nil, fmt.Errorf("decode task comments: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		task.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		task.UpdatedAt = updated
	}
	return task, nil
}
