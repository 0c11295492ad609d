package config

import "time"

// Default value constants.
const (
	DefaultServerPort = 8000
	DefaultServerMode = "debug"

	DefaultNeo4jURI      = "bolt://localhost:7687"
	DefaultNeo4jUser     = "neo4j"
	DefaultNeo4jDatabase = "neo4j"
	DefaultNeo4jPoolSize = 50

	DefaultLLMEndpoint    = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultLLMModel       = "gemini-2.5-flash"
	DefaultLLMTemperature = 0.3
	DefaultLLMMaxTokens   = 2048
	DefaultLLMTimeout     = 60 * time.Second

	DefaultTTSBaseURL = "https://api.elevenlabs.io/v1"
	DefaultTTSTimeout = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "drugrx"
)

// ApplyDefaults fills every zero-value field in cfg with the application
// default.  Fields already set by the caller are left unchanged so that
// explicit configuration always wins.  Must run after unmarshalling and
// before Validate so that optional-but-defaulted fields are never seen as
// missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		cfg.Server.AllowOrigins = []string{"*"}
	}

	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.User == "" {
		cfg.Neo4j.User = DefaultNeo4jUser
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultNeo4jDatabase
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = DefaultNeo4jPoolSize
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 10 * time.Second
	}

	if cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = DefaultLLMEndpoint
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultLLMModel
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = DefaultLLMTemperature
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = DefaultLLMMaxTokens
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}

	if cfg.TTS.BaseURL == "" {
		cfg.TTS.BaseURL = DefaultTTSBaseURL
	}
	if cfg.TTS.Timeout == 0 {
		cfg.TTS.Timeout = DefaultTTSTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
