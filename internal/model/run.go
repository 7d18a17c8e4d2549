package model

import "time"

// IngestJob is the queue message that starts one pipeline run.
type IngestJob struct {
	RunID    string `json:"run_id"`
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	Username string `json:"username"`
}

type RunStatusValue string

const (
	RunQueued    RunStatusValue = "queued"
	RunRunning   RunStatusValue = "running"
	RunCompleted RunStatusValue = "completed"
	RunFailed    RunStatusValue = "failed"
)

type RunResult struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

// RunStatus is the pollable view of a run. Result is set once the pipeline
// reached a terminal state; Error is set when the run raised instead.
type RunStatus struct {
	RunID       string         `json:"run_id"`
	Username    string         `json:"username"`
	FileID      string         `json:"file_id"`
	FileName    string         `json:"file_name"`
	Status      RunStatusValue `json:"status"`
	StartedAt   *time.Time     `json:"started_at"`
	UpdatedAt   *time.Time     `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	Result      *RunResult     `json:"result"`
	Error       *string        `json:"error"`
}
