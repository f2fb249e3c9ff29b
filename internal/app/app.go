// Package app provides application initialization and dependency
// injection. App is the container that wires configuration, Genkit,
// the PostgreSQL knowledge base, the answer composer, and the quiz
// engine; commands and the HTTP server consume it.
package app

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gayu2216/krishna-knowledge/internal/chat"
	"github.com/gayu2216/krishna-knowledge/internal/config"
	"github.com/gayu2216/krishna-knowledge/internal/knowledge"
	"github.com/gayu2216/krishna-knowledge/internal/log"
	"github.com/gayu2216/krishna-knowledge/internal/quiz"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	// Knowledge base
	Knowledge *knowledge.Store
	Ingestor  *knowledge.Ingestor

	// Chat
	SearchTool ai.Tool
	Composer   *chat.Composer

	// Quiz
	QuizGenerator quiz.Generator
	QuizSessions  *quiz.Registry
}

// Close releases all resources held by the App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}
	if a.DBPool != nil {
		a.DBPool.Close()
	}
	return nil
}

// ModelName returns the provider-qualified model identifier Genkit
// expects, e.g. "ollama/llama3".
func ModelName(cfg *config.Config) string {
	return fmt.Sprintf("%s/%s", cfg.Provider, cfg.ModelName)
}
