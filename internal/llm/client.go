package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/tuannvm/context-a2a/internal/config"
	log "github.com/tuannvm/context-a2a/internal/logging"
	"github.com/tuannvm/context-a2a/internal/models"
)

// Client wraps a langchain-go model as the pipeline's generation backend.
// It implements tasks.Backend.
type Client struct {
	llm         llms.Model
	maxTokens   int
	timeout     time.Duration
	temperature float64
}

// NewClient creates a new LLM client based on the provided configuration
func NewClient(cfg *config.Config) (*Client, error) {
	var llmModel llms.Model
	var err error

	// Select LLM provider based on configuration
	switch cfg.LLMProvider {
	case "openai":
		llmModel, err = openai.New(
			openai.WithToken(cfg.LLMAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
	case "azure":
		llmModel, err = openai.New(
			openai.WithToken(cfg.LLMAPIKey),
			openai.WithModel(cfg.LLMModel),
			openai.WithBaseURL(cfg.LLMServiceURL),
		)
	case "anthropic":
		llmModel, err = anthropic.New(
			anthropic.WithToken(cfg.LLMAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Client{
		llm:         llmModel,
		maxTokens:   cfg.LLMMaxTokens,
		timeout:     cfg.LLMTimeout,
		temperature: cfg.LLMTemperature,
	}, nil
}

// Complete sends a prompt to the LLM and returns the completion
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.llm == nil {
		return "", errors.New("LLM client not initialized")
	}

	log.Debugf("Sending prompt to LLM: %s", truncateForLogging(prompt))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("LLM generation failed: %w", err)
	}

	log.Debugf("Received response from LLM: %s", truncateForLogging(completion))

	return completion, nil
}

// Generate implements the task executor's backend contract: it turns one
// task's typed inputs into a prompt and returns the completion.
func (c *Client) Generate(ctx context.Context, taskType models.TaskType, inputs map[string]string) (string, error) {
	return c.Complete(ctx, buildTaskPrompt(taskType, inputs))
}

// taskInstructions maps each task type to the instruction line that heads
// its prompt.
var taskInstructions = map[models.TaskType]string{
	models.TaskCodeAnalysis:   "Analyze the following request and its referenced context. Summarize what the code in question does and flag anything suspicious.",
	models.TaskBugDiagnosis:   "Diagnose the bug described below using the referenced issues and context. State the likely root cause and concrete next steps.",
	models.TaskDocumentation:  "Write documentation for the subject described below, grounded in the referenced pages and repositories.",
	models.TaskCodeGeneration: "Generate the code requested below. Follow the conventions visible in the referenced context.",
	models.TaskCodeReview:     "Review the referenced change below. Call out correctness, clarity and test-coverage concerns.",
}

// buildTaskPrompt assembles a deterministic prompt from the task inputs:
// the instruction for the task type followed by each input section in
// sorted key order.
func buildTaskPrompt(taskType models.TaskType, inputs map[string]string) string {
	var sb strings.Builder

	instruction, ok := taskInstructions[taskType]
	if !ok {
		instruction = "Complete the following request using the provided context."
	}
	sb.WriteString(instruction)
	sb.WriteString("\n")

	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if inputs[k] == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n%s\n", k, inputs[k])
	}

	return sb.String()
}

// truncateForLogging truncates a string to a reasonable length for logging
func truncateForLogging(s string) string {
	const maxLength = 500
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "... [truncated]"
}
