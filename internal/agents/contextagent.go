package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/tuannvm/context-a2a/internal/common"
	"github.com/tuannvm/context-a2a/internal/config"
	"github.com/tuannvm/context-a2a/internal/fetchers"
	"github.com/tuannvm/context-a2a/internal/llm"
	log "github.com/tuannvm/context-a2a/internal/logging"
	"github.com/tuannvm/context-a2a/internal/models"
	"github.com/tuannvm/context-a2a/internal/pipeline"
	"github.com/tuannvm/context-a2a/internal/tasks"
)

// ContextAgent exposes the context pipeline as an A2A agent: it accepts
// message-available tasks, runs the pipeline and responds with the
// processed context. Implements the TaskProcessor interface from
// trpc-a2a-go.
type ContextAgent struct {
	config   *config.Config
	pipeline *pipeline.Pipeline
}

// NewContextAgent creates a new ContextAgent wired to the configured
// integrations and generation backend.
func NewContextAgent(cfg *config.Config) *ContextAgent {
	fetcherSet := fetchers.NewSet(cfg)

	var backend tasks.Backend
	if cfg.LLMEnabled {
		client, err := llm.NewClient(cfg)
		if err != nil {
			log.Warnf("LLM backend disabled: %v", err)
		} else {
			backend = client
		}
	} else {
		log.Infof("LLM disabled, planned tasks will not be executable")
	}

	return &ContextAgent{
		config:   cfg,
		pipeline: pipeline.New(cfg, fetcherSet, backend),
	}
}

// NewContextAgentWithPipeline creates an agent around an existing pipeline.
// Used by tests and by callers that wire their own capabilities.
func NewContextAgentWithPipeline(cfg *config.Config, p *pipeline.Pipeline) *ContextAgent {
	return &ContextAgent{config: cfg, pipeline: p}
}

// Process implements the TaskProcessor interface from trpc-a2a-go
func (a *ContextAgent) Process(ctx context.Context, taskID string, message protocol.Message, handle taskmanager.TaskHandle) error {
	log.Infof("Received task with ID: %s", taskID)

	if err := handle.UpdateStatus(protocol.TaskState("processing"), nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	var task models.MessageAvailableTask
	if err := common.ExtractMessageTask(message, &task); err != nil {
		log.Warnf("Failed to extract message task: %v", err)
		return fmt.Errorf("failed to extract message task: %w", err)
	}
	log.Infof("Processing message %s (%d chars)", task.MessageID, len(task.Text))

	if err := handle.UpdateStatus(protocol.TaskState("processing_context"), nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	result, err := a.pipeline.Process(ctx, pipeline.ProcessRequest{
		Text:         task.Text,
		TemplateName: task.TemplateName,
		Intent:       task.Intent,
		ExecuteTasks: task.ExecuteTasks,
	})
	if err != nil {
		// Only structural errors (unknown template) reach this path.
		return fmt.Errorf("pipeline failed: %w", err)
	}

	processed := models.ContextProcessedTask{
		TaskID:      taskID,
		MessageID:   task.MessageID,
		Parsed:      result.Parsed,
		Prompt:      result.Prompt,
		Tasks:       result.Tasks,
		FetchErrors: len(result.Enriched.FetchErrors),
		Summary:     summarize(result),
	}

	resultJSON, err := json.Marshal(processed)
	if err != nil {
		return fmt.Errorf("failed to marshal processed task: %w", err)
	}

	// Record the processed result as an artifact so peers can consume it
	// through the consolidated response message.
	artifact := protocol.Artifact{
		Name:        common.StringPtr("processed-context"),
		Description: common.StringPtr("Processed context"),
		Parts:       []protocol.Part{protocol.NewTextPart(string(resultJSON))},
		Metadata: map[string]interface{}{
			"templateName": result.Prompt.TemplateName,
			"truncated":    result.Prompt.Truncated,
		},
	}
	if err := handle.AddArtifact(artifact); err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}

	responseMsg := &protocol.Message{
		Parts: []protocol.Part{protocol.NewTextPart(string(resultJSON))},
	}
	if err := handle.UpdateStatus(protocol.TaskState("completed"), responseMsg); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	log.Infof("Task %s completed successfully", taskID)
	return nil
}

// summarize builds the human-readable one-paragraph summary of a run.
func summarize(result *pipeline.ProcessResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Detected %d reference(s), resolved %d, %d fetch error(s).",
		len(result.Parsed.References), len(result.Enriched.Payloads), len(result.Enriched.FetchErrors))

	if len(result.Tasks) > 0 {
		counts := map[models.TaskStatus]int{}
		types := make([]string, 0, len(result.Tasks))
		for _, task := range result.Tasks {
			counts[task.Status]++
			types = append(types, string(task.Type))
		}
		fmt.Fprintf(&sb, " Planned task(s): %s.", strings.Join(types, ", "))
		if counts[models.StatusPending] != len(result.Tasks) {
			fmt.Fprintf(&sb, " Executed: %d completed, %d failed, %d skipped.",
				counts[models.StatusCompleted], counts[models.StatusFailed], counts[models.StatusSkipped])
		}
	}
	if result.Prompt.Truncated {
		sb.WriteString(" Prompt context was truncated to fit the size budget.")
	}

	return sb.String()
}

// StartServer sets up and runs the A2A server for this agent, blocking
// until ctx is canceled.
func (a *ContextAgent) StartServer(ctx context.Context) error {
	srv, err := common.SetupServer(common.SetupServerOptions{
		AgentName:    a.config.AgentName,
		AgentVersion: a.config.AgentVersion,
		AgentURL:     a.config.AgentURL,
		Description:  "Turns free-form text into enriched context, prompts and executable task plans",
		AuthType:     a.config.AuthType,
		JWTSecret:    a.config.JWTSecret,
		APIKey:       a.config.APIKey,
		Processor:    a,
	})
	if err != nil {
		return fmt.Errorf("failed to set up server: %w", err)
	}

	return common.StartServer(ctx, srv, a.config.ServerHost, a.config.ServerPort)
}
