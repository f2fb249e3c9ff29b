package config

import (
	"fmt"
	"os"
	"slices"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Provider validation, plus per-provider API key checks.
	switch c.Provider {
	case ProviderOllama:
		if c.OllamaHost == "" {
			return fmt.Errorf("%w: ollama_host cannot be empty when provider is %q",
				ErrInvalidOllamaHost, ProviderOllama)
		}
	case ProviderGoogleAI:
		if os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required for provider %q",
				ErrMissingAPIKey, ProviderGoogleAI)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required for provider %q",
				ErrMissingAPIKey, ProviderOpenAI)
		}
	default:
		return fmt.Errorf("%w: %q, must be one of: ollama, googleai, openai",
			ErrInvalidProvider, c.Provider)
	}

	// 2. Model configuration validation.
	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}
	if c.QuizTemperature < 0.0 || c.QuizTemperature > 2.0 {
		return fmt.Errorf("%w: quiz_temperature must be between 0.0 and 2.0, got %.2f",
			ErrInvalidTemperature, c.QuizTemperature)
	}

	// 3. Knowledge base configuration validation.
	// The embedder model is required at startup: without it queries cannot
	// be embedded, so the whole retrieval path is dead on arrival.
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model (EMBEDDING_MODEL) must be set", ErrMissingEmbedderModel)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: collection cannot be empty", ErrInvalidCollection)
	}
	if c.RetrieveTopK < 1 || c.RetrieveTopK > 10 {
		return fmt.Errorf("%w: must be between 1 and 10, got %d", ErrInvalidRetrieveTopK, c.RetrieveTopK)
	}

	// 4. Quiz configuration validation.
	if !slices.Contains(QuizCountChoices, c.QuizDefaultCount) {
		return fmt.Errorf("%w: must be one of %v, got %d",
			ErrInvalidQuizCount, QuizCountChoices, c.QuizDefaultCount)
	}

	// 5. PostgreSQL configuration validation.
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	return nil
}
