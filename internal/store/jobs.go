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

const jobColumns = "id, job_number, title, description, customer, priority, status, deadline, files_json, created_by, assigned_to, created_at, updated_at"

// CreateJob inserts a new job. Blank priority and status get the usual
// intake defaults.
func (s *Store) CreateJob(ctx context.Context, job *Job) (*Job, error) {
	if job == nil {
		return nil, errors.New("job is nil")
	}
	if strings.TrimSpace(job.JobNumber) == "" || strings.TrimSpace(job.Title) == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "create job", "job number and title are required", nil)
	}
	if job.Priority == "" {
		job.Priority = PriorityMedium
	}
	if !ValidPriority(job.Priority) {
		return nil, services.Wrap(services.ErrValidation, "store", "create job", fmt.Sprintf("unknown priority %q", job.Priority), nil)
	}
	if job.Status == "" {
		job.Status = JobPending
	}
	if !ValidJobStatus(job.Status) {
		return nil, services.Wrap(services.ErrValidation, "store", "create job", fmt.Sprintf("unknown status %q", job.Status), nil)
	}

	job.ID = uuid.NewString()
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	files, err := marshalJSON(job.Files)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.JobNumber,
		job.Title,
		nullableString(job.Description),
		nullableString(job.Customer),
		job.Priority,
		job.Status,
		nullableTime(job.Deadline),
		files,
		nullableString(job.CreatedBy),
		nullableString(job.AssignedTo),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, services.Wrap(services.ErrConflict, "store", "create job", fmt.Sprintf("job number %q already exists", job.JobNumber), err)
		}
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.JobByID(ctx, job.ID)
}

// JobByID fetches a job by identifier. Missing jobs return nil without
// error.
func (s *Store) JobByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListJobs returns jobs filtered by status set (or all jobs when no status
// is provided), newest first.
func (s *Store) ListJobs(ctx context.Context, statuses ...JobStatus) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJob persists changes to an existing job.
func (s *Store) UpdateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if !ValidPriority(job.Priority) {
		return services.Wrap(services.ErrValidation, "store", "update job", fmt.Sprintf("unknown priority %q", job.Priority), nil)
	}
	if !ValidJobStatus(job.Status) {
		return services.Wrap(services.ErrValidation, "store", "update job", fmt.Sprintf("unknown status %q", job.Status), nil)
	}
	job.UpdatedAt = time.Now().UTC()

	files, err := marshalJSON(job.Files)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE jobs
         SET job_number = ?, title = ?, description = ?, customer = ?,
             priority = ?, status = ?, deadline = ?, files_json = ?,
             created_by = ?, assigned_to = ?, updated_at = ?
         WHERE id = ?`,
		job.JobNumber,
		job.Title,
		nullableString(job.Description),
		nullableString(job.Customer),
		job.Priority,
		job.Status,
		nullableTime(job.Deadline),
		files,
		nullableString(job.CreatedBy),
		nullableString(job.AssignedTo),
		job.UpdatedAt.Format(time.RFC3339Nano),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// DeleteJob removes a job and its tasks.
func (s *Store) DeleteJob(ctx context.Context, id string) (bool, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE job_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete job tasks: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// JobStats returns a count of jobs grouped by status.
func (s *Store) JobStats(ctx context.Context) (map[JobStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[JobStatus]int)
	for rows.Next() {
		var status JobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id          string
		jobNumber   string
		title       string
		description sql.NullString
		customer    sql.NullString
		priority    string
		status      string
		deadlineRaw sql.NullString
		filesRaw    sql.NullString
		createdBy   sql.NullString
		assignedTo  sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &jobNumber, &title, &description, &customer, &priority, &status, &deadlineRaw, &filesRaw, &createdBy, &assignedTo, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	job := &Job{
		ID:          id,
		JobNumber:   jobNumber,
		Title:       title,
		Description: description.String,
		Customer:    customer.String,
		Priority:    Priority(priority),
		Status:      JobStatus(status),
		CreatedBy:   createdBy.String,
		AssignedTo:  assignedTo.String,
	}
	if err := unmarshalInto(filesRaw, &job.Files); err != nil {
		return nil, fmt.Errorf("decode job files: %w", err)
	}
	if deadlineRaw.Valid {
		if deadline, err := parseTimeString(deadlineRaw.String); err == nil {
			job.Deadline = &deadline
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}
