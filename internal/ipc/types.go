package ipc

import (
	"steward/internal/daemon"
	"steward/internal/store"
)

// Job mirrors the store job record for IPC callers.
type Job = store.Job

// Activity mirrors the store audit record for IPC callers.
type Activity = store.Activity

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse carries the daemon's runtime information.
type StatusResponse struct {
	Status daemon.Status `json:"status"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// OrganizeRequest triggers a sweep of the watch directory.
type OrganizeRequest struct {
	DryRun bool `json:"dry_run"`
}

// OrganizeResponse reports the sweep outcome.
type OrganizeResponse struct {
	DryRun      bool `json:"dry_run"`
	Processed   int  `json:"processed"`
	Categorized int  `json:"categorized"`
	Held        int  `json:"held"`
	Renamed     int  `json:"renamed"`
	Errors      int  `json:"errors"`
}

// JobsRequest filters job listing by status.
type JobsRequest struct {
	Statuses []string `json:"statuses"`
}

// JobsResponse contains job records.
type JobsResponse struct {
	Jobs []Job `json:"jobs"`
}

// ActivityRequest fetches recent audit rows.
type ActivityRequest struct {
	EntityType string `json:"entity_type"`
	Limit      int    `json:"limit"`
}

// ActivityResponse contains audit rows, newest first.
type ActivityResponse struct {
	Items []Activity `json:"items"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
