package store

import "time"

// Role controls API authorization. Hub masters administer users and
// modules; hub caps work jobs and tasks.
type Role string

const (
	RoleHubMaster Role = "hub_master"
	RoleHubCap    Role = "hub_cap"
)

// ValidRole reports whether the role is one of the known values.
func ValidRole(r Role) bool {
	return r == RoleHubMaster || r == RoleHubCap
}

// User is a shop-floor account. The password hash is deliberately
// untagged for JSON; API views build their own representation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	Role         Role      `json:"role"`
	Skills       []string  `json:"skills,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JobStatus tracks a job through the shop.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobReview     JobStatus = "review"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// ValidJobStatus reports whether the status is a known value.
func ValidJobStatus(s JobStatus) bool {
	switch s {
	case JobPending, JobInProgress, JobReview, JobCompleted, JobCancelled:
		return true
	}
	return false
}

// Priority orders jobs and tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether the priority is a known value.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Job is a customer order moving through the shop.
type Job struct {
	ID          string     `json:"id"`
	JobNumber   string     `json:"job_number"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Customer    string     `json:"customer,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      JobStatus  `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Files       []string   `json:"files,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskType classifies the work a task represents.
type TaskType string

const (
	TaskProgramming TaskType = "programming"
	TaskSetup       TaskType = "setup"
	TaskMachining   TaskType = "machining"
	TaskInspection  TaskType = "inspection"
	TaskOther       TaskType = "other"
)

// ValidTaskType reports whether the task type is a known value.
func ValidTaskType(t TaskType) bool {
	switch t {
	case TaskProgramming, TaskSetup, TaskMachining, TaskInspection, TaskOther:
		return true
	}
	return false
}

// TaskStatus tracks a task within its job.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskReview     TaskStatus = "review"
	TaskCompleted  TaskStatus = "completed"
)

// ValidTaskStatus reports whether the task status is a known value.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskPending, TaskAssigned, TaskInProgress, TaskBlocked, TaskReview, TaskCompleted:
		return true
	}
	return false
}

// Comment is one timestamped note on a task.
type Comment struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Task is one unit of work inside a job.
type Task struct {
	ID             string     `json:"id"`
	JobID          string     `json:"job_id"`
	Title          string     `json:"title"`
	Type           TaskType   `json:"type"`
	Status         TaskStatus `json:"status"`
	Priority       Priority   `json:"priority"`
	Assignee       string     `json:"assignee,omitempty"`
	EstimatedHours float64    `json:"estimated_hours"`
	ActualHours    float64    `json:"actual_hours"`
	Dependencies   []string   `json:"dependencies,omitempty"`
	Comments       []Comment  `json:"comments,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ModuleStatus reflects whether a registered module is running.
type ModuleStatus string

const (
	ModuleActive   ModuleStatus = "active"
	ModuleInactive ModuleStatus = "inactive"
	ModuleError    ModuleStatus = "error"
)

// Module is a toggleable subsystem registration (organizer, monitor, and
// so on) with its runtime state.
type Module struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Version     string         `json:"version,omitempty"`
	Status      ModuleStatus   `json:"status"`
	Config      map[string]any `json:"config,omitempty"`
	Metrics     map[string]any `json:"metrics,omitempty"`
	LastRun     *time.Time     `json:"last_run,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Activity is one append-only audit row. File moves, renames, holds, and
// entity changes all land here.
type Activity struct {
	ID         int64          `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
