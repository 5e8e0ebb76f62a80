package config

// Agent identity constants
const (
	ContextAgentName = "ContextPipelineAgent"

	// DefaultContextAgentPort is the port the ContextAgent listens on when
	// no SERVER_PORT override is present.
	DefaultContextAgentPort = "8080"
)
