// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.krishna/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: provider, chat model, temperature, embedder model
//   - Storage: PostgreSQL connection for the pgvector knowledge base
//   - Chat: agentic loop bounds (max turns, wall-clock budget)
//   - Quiz: question count choices and per-slot retry attempts
//
// Error Handling: sentinel errors for Go-idiomatic checking with errors.Is();
// wrap with context using fmt.Errorf("%w: details", ErrXxx).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the chat model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrMissingEmbedderModel indicates the embedder model is not configured.
	// Absence of the embedder model is a fatal initialization fault: the
	// knowledge base cannot embed queries without it.
	ErrMissingEmbedderModel = errors.New("missing embedder model")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidRetrieveTopK indicates the retrieval result count is out of range.
	ErrInvalidRetrieveTopK = errors.New("invalid retrieve top_k")

	// ErrInvalidCollection indicates the knowledge collection name is invalid.
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidOllamaHost indicates the Ollama host is invalid.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")

	// ErrInvalidQuizCount indicates the default quiz question count is invalid.
	ErrInvalidQuizCount = errors.New("invalid quiz question count")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderOllama   = "ollama"
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
)

// Defaults for the agentic answer loop (spec'd bounds of the composer).
const (
	// DefaultMaxTurns caps the tool-call loop iterations per answer.
	DefaultMaxTurns = 5

	// DefaultAnswerBudget is the wall-clock deadline for one answer,
	// covering the whole loop rather than a single model call.
	DefaultAnswerBudget = 60 * time.Second
)

// QuizCountChoices are the question counts a quiz can be started with.
var QuizCountChoices = []int{3, 5, 10, 15, 20}

// Config stores application configuration.
type Config struct {
	// AI provider and model configuration
	Provider    string  `mapstructure:"provider" json:"provider"`     // "ollama" (default), "googleai", "openai"
	ModelName   string  `mapstructure:"model_name" json:"model_name"` // chat model (e.g., "llama3", "gemini-2.5-flash")
	Temperature float32 `mapstructure:"temperature" json:"temperature"`

	// Ollama configuration (only used when provider is "ollama")
	OllamaHost string `mapstructure:"ollama_host" json:"ollama_host"`

	// Knowledge base (RAG) configuration
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"` // required
	Collection    string `mapstructure:"collection" json:"collection"`         // logical collection name, stored in document metadata
	RetrieveTopK  int    `mapstructure:"retrieve_top_k" json:"retrieve_top_k"`

	// Chat composer bounds
	MaxTurns     int           `mapstructure:"max_turns" json:"max_turns"`
	AnswerBudget time.Duration `mapstructure:"answer_budget" json:"answer_budget"`

	// Quiz configuration
	QuizDefaultCount int     `mapstructure:"quiz_default_count" json:"quiz_default_count"`
	QuizTemperature  float32 `mapstructure:"quiz_temperature" json:"quiz_temperature"`

	// Storage configuration (the knowledge base persistence location)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".krishna")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	// CRITICAL: Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// AI defaults
	viper.SetDefault("provider", ProviderOllama)
	viper.SetDefault("model_name", "llama3")
	viper.SetDefault("temperature", 0.0)
	viper.SetDefault("ollama_host", "http://localhost:11434")

	// Knowledge base defaults
	viper.SetDefault("embedder_model", "nomic-embed-text")
	viper.SetDefault("collection", "krishna_knowledge")
	viper.SetDefault("retrieve_top_k", 3)

	// Chat composer defaults
	viper.SetDefault("max_turns", DefaultMaxTurns)
	viper.SetDefault("answer_budget", DefaultAnswerBudget)

	// Quiz defaults
	viper.SetDefault("quiz_default_count", 5)
	viper.SetDefault("quiz_temperature", 0.7)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "krishna")
	viper.SetDefault("postgres_password", "krishna_dev_password")
	viper.SetDefault("postgres_db_name", "krishna")
	viper.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds environment variable overrides explicitly.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "MODEL_PROVIDER")
	mustBind("model_name", "CHAT_MODEL")
	mustBind("embedder_model", "EMBEDDING_MODEL")
	mustBind("collection", "COLLECTION_NAME")
	mustBind("ollama_host", "OLLAMA_HOST")

	// NOTE: GEMINI_API_KEY and OPENAI_API_KEY are read directly by the
	// Genkit plugins, not via Viper. Validate() checks their presence
	// based on the selected provider.
}
