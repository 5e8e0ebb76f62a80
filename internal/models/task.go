package models

import "time"

// TaskType classifies one planned unit of generation work.
type TaskType string

const (
	TaskCodeAnalysis   TaskType = "code_analysis"
	TaskBugDiagnosis   TaskType = "bug_diagnosis"
	TaskDocumentation  TaskType = "documentation"
	TaskCodeGeneration TaskType = "code_generation"
	TaskCodeReview     TaskType = "code_review"
)

// TaskStatus is the lifecycle state of an AgentTask. Transitions only move
// forward: pending -> in_progress -> completed/failed, or pending -> skipped.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
	StatusSkipped    TaskStatus = "skipped"
)

// Terminal reports whether the status is a terminal state.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// AgentTask is one unit of planned work. Tasks are created by the planner
// in the pending state; the executor advances them by returning updated
// snapshots rather than mutating in place.
type AgentTask struct {
	ID        string            `json:"id"`
	Type      TaskType          `json:"type"`
	Inputs    map[string]string `json:"inputs"`
	Status    TaskStatus        `json:"status"`
	Result    string            `json:"result,omitempty"` // set iff completed
	Error     string            `json:"error,omitempty"`  // set iff failed
	StartedAt time.Time         `json:"startedAt,omitzero"`
	EndedAt   time.Time         `json:"endedAt,omitzero"`
}
