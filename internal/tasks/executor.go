package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	log "github.com/tuannvm/context-a2a/internal/logging"
	"github.com/tuannvm/context-a2a/internal/models"
)

// Backend is the opaque generation capability the executor delegates the
// actual work to.
type Backend interface {
	Generate(ctx context.Context, taskType models.TaskType, inputs map[string]string) (string, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(ctx context.Context, taskType models.TaskType, inputs map[string]string) (string, error)

func (f BackendFunc) Generate(ctx context.Context, taskType models.TaskType, inputs map[string]string) (string, error) {
	return f(ctx, taskType, inputs)
}

// Executor runs planned tasks against a generation backend. Transitions
// are expressed as returned snapshots: the input task is never mutated and
// status only moves forward. Backend failures land on the task's Error
// field, never on the call's error path.
type Executor struct {
	backend Backend
}

// NewExecutor creates a new Executor
func NewExecutor(backend Backend) *Executor {
	return &Executor{backend: backend}
}

// Execute advances one task through its lifecycle and returns the final
// snapshot. Terminal tasks are returned unchanged: re-running requires a
// fresh task (see Retry). A task missing its required inputs is skipped
// without touching the backend.
func (e *Executor) Execute(ctx context.Context, task models.AgentTask) models.AgentTask {
	if task.Status.Terminal() {
		log.Debugf("Task %s already terminal (%s), not re-entering", task.ID, task.Status)
		return task
	}
	if task.Status != models.StatusPending {
		return task
	}

	if task.Inputs["message"] == "" {
		log.Warnf("Task %s (%s) missing required message input, skipping", task.ID, task.Type)
		task.Status = models.StatusSkipped
		return task
	}

	task.Status = models.StatusInProgress
	task.StartedAt = time.Now()
	log.Infof("Executing task %s (%s)", task.ID, task.Type)

	if e.backend == nil {
		task.Status = models.StatusFailed
		task.Error = "backend_unavailable: no generation backend configured"
		task.EndedAt = time.Now()
		return task
	}

	result, err := e.backend.Generate(ctx, task.Type, task.Inputs)
	task.EndedAt = time.Now()
	if err != nil {
		task.Status = models.StatusFailed
		task.Error = fmt.Sprintf("generation_failed: %v", err)
		log.Warnf("Task %s failed: %s", task.ID, task.Error)
		return task
	}

	task.Status = models.StatusCompleted
	task.Result = result
	log.Infof("Task %s completed", task.ID)
	return task
}

// ExecuteAll runs every task in the plan and returns the final snapshots
// in plan order. Sequential by default; with concurrent set, independent
// tasks run in parallel and each task object is owned by exactly one
// goroutine. A failed task never blocks its siblings.
func (e *Executor) ExecuteAll(ctx context.Context, plan []models.AgentTask, concurrent bool) []models.AgentTask {
	out := make([]models.AgentTask, len(plan))

	if !concurrent {
		for i, task := range plan {
			out[i] = e.Execute(ctx, task)
		}
		return out
	}

	var g errgroup.Group
	for i, task := range plan {
		g.Go(func() error {
			out[i] = e.Execute(ctx, task)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Retry produces a fresh pending task from a terminal, non-completed
// snapshot. The new task gets its own id; the original snapshot stays
// terminal. Retrying a pending or completed task is a no-op copy.
func Retry(task models.AgentTask) models.AgentTask {
	if task.Status != models.StatusFailed && task.Status != models.StatusSkipped {
		return task
	}
	return models.AgentTask{
		ID:     uuid.NewString(),
		Type:   task.Type,
		Inputs: task.Inputs,
		Status: models.StatusPending,
	}
}
