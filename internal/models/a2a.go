package models

// MessageAvailableTask is the payload sent to the ContextAgent when a new
// piece of free-form text (chat message, ticket body, issue body) should be
// turned into enriched context and a task plan.
type MessageAvailableTask struct {
	MessageID    string            `json:"messageId"`
	Text         string            `json:"text"`
	TemplateName string            `json:"templateName,omitempty"` // defaults to "default"
	Intent       string            `json:"intent,omitempty"`
	ExecuteTasks bool              `json:"executeTasks,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ContextProcessedTask is the result sent back after the pipeline has run.
type ContextProcessedTask struct {
	TaskID      string          `json:"taskId"`
	MessageID   string          `json:"messageId"`
	Parsed      ParsedMessage   `json:"parsed"`
	Prompt      FormattedPrompt `json:"prompt"`
	Tasks       []AgentTask     `json:"tasks"`
	FetchErrors int             `json:"fetchErrorCount"`
	Summary     string          `json:"summary"`
}
