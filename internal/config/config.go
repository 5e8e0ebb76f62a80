package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerPort int
	ServerHost string

	// Agent configuration
	AgentName    string
	AgentVersion string
	AgentURL     string

	// Authentication
	AuthType  string // "jwt" or "apikey"
	JWTSecret string
	APIKey    string

	// Atlassian configuration (Jira tickets, Confluence pages)
	AtlassianBaseURL  string
	AtlassianUsername string
	AtlassianAPIToken string

	// GitHub configuration (issues, pull requests, repos, commits)
	GitHubBaseURL string
	GitHubToken   string

	// LLM configuration
	LLMEnabled     bool
	LLMProvider    string // "openai", "azure", "anthropic"
	LLMModel       string
	LLMAPIKey      string
	LLMServiceURL  string
	LLMMaxTokens   int
	LLMTimeout     time.Duration
	LLMTemperature float64

	// Pipeline tuning
	PromptMaxChars      int           // size budget for assembled prompts
	MaxConcurrentFetch  int           // enrichment fan-out cap per pass
	FetchTimeout        time.Duration // per-fetch deadline during enrichment
	ConcurrentExecution bool          // opt-in concurrent task execution
}

// init loads environment variables from a .env file if one is present.
func init() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded configuration from %s file", path)
			return
		}
	}
	log.Println("No .env file found. Using environment variables or defaults.")
}

// NewConfig creates a new configuration with values from environment variables
func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "localhost")

	v.SetDefault("AGENT_NAME", ContextAgentName)
	v.SetDefault("AGENT_VERSION", "1.0.0")
	v.SetDefault("AGENT_URL", "http://localhost:8080")

	v.SetDefault("AUTH_TYPE", "apikey") // "jwt" or "apikey"
	v.SetDefault("JWT_SECRET", "your-jwt-secret")
	v.SetDefault("API_KEY", "your-api-key")

	v.SetDefault("ATLASSIAN_BASE_URL", "https://your-instance.atlassian.net")
	v.SetDefault("ATLASSIAN_USERNAME", "")
	v.SetDefault("ATLASSIAN_API_TOKEN", "")

	v.SetDefault("GITHUB_BASE_URL", "https://api.github.com")
	v.SetDefault("GITHUB_TOKEN", "")

	v.SetDefault("LLM_ENABLED", false)
	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("LLM_MODEL", "gpt-4")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_SERVICE_URL", "")
	v.SetDefault("LLM_MAX_TOKENS", 4000)
	v.SetDefault("LLM_TIMEOUT", 30)
	v.SetDefault("LLM_TEMPERATURE", 0.0)

	v.SetDefault("PROMPT_MAX_CHARS", 12000)
	v.SetDefault("MAX_CONCURRENT_FETCH", 4)
	v.SetDefault("FETCH_TIMEOUT", 15)
	v.SetDefault("CONCURRENT_EXECUTION", false)

	return &Config{
		ServerPort: v.GetInt("SERVER_PORT"),
		ServerHost: v.GetString("SERVER_HOST"),

		AgentName:    v.GetString("AGENT_NAME"),
		AgentVersion: v.GetString("AGENT_VERSION"),
		AgentURL:     v.GetString("AGENT_URL"),

		AuthType:  v.GetString("AUTH_TYPE"),
		JWTSecret: v.GetString("JWT_SECRET"),
		APIKey:    v.GetString("API_KEY"),

		AtlassianBaseURL:  v.GetString("ATLASSIAN_BASE_URL"),
		AtlassianUsername: v.GetString("ATLASSIAN_USERNAME"),
		AtlassianAPIToken: v.GetString("ATLASSIAN_API_TOKEN"),

		GitHubBaseURL: v.GetString("GITHUB_BASE_URL"),
		GitHubToken:   v.GetString("GITHUB_TOKEN"),

		LLMEnabled:     v.GetBool("LLM_ENABLED"),
		LLMProvider:    v.GetString("LLM_PROVIDER"),
		LLMModel:       v.GetString("LLM_MODEL"),
		LLMAPIKey:      v.GetString("LLM_API_KEY"),
		LLMServiceURL:  v.GetString("LLM_SERVICE_URL"),
		LLMMaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
		LLMTimeout:     time.Duration(v.GetInt("LLM_TIMEOUT")) * time.Second,
		LLMTemperature: v.GetFloat64("LLM_TEMPERATURE"),

		PromptMaxChars:      v.GetInt("PROMPT_MAX_CHARS"),
		MaxConcurrentFetch:  v.GetInt("MAX_CONCURRENT_FETCH"),
		FetchTimeout:        time.Duration(v.GetInt("FETCH_TIMEOUT")) * time.Second,
		ConcurrentExecution: v.GetBool("CONCURRENT_EXECUTION"),
	}
}
