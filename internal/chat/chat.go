// Package chat implements the retrieval-augmented answer composer.
//
// The composer runs a bounded agentic loop: the model may call the
// scripture retrieval tool zero or more times, capped by MaxTurns and a
// wall-clock budget covering the whole loop. Output is post-processed so
// raw tool syntax never reaches the user and every answer opens with the
// fixed salutation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/gayu2216/krishna-knowledge/internal/rag"
)

// Salutation is the fixed token every user-visible answer must open with.
const Salutation = "Hare Krishna"

// ApologyMessage replaces output that still contains tool-call artifacts.
const ApologyMessage = "Hare Krishna! I apologize, but I'm having trouble processing your question. Please try asking in a different way."

// fallbackMessage is returned when the model produces an empty response.
const fallbackMessage = "Hare Krishna! I apologize, but I couldn't generate a response. Please try rephrasing your question."

// ErrBudgetExceeded indicates the agentic loop ran out of wall-clock budget.
var ErrBudgetExceeded = errors.New("answer budget exceeded")

// systemPrompt fixes the output policy: ground answers in retrieval, open
// with the salutation, cite sources, admit ignorance without inventing one,
// and never surface raw tool calls.
const systemPrompt = `You are a helpful assistant with knowledge about Krishna and Hindu philosophy.
You have access to the ` + rag.ToolName + ` tool to search for relevant information.

When a user asks a question:
1. Use the ` + rag.ToolName + ` tool to find relevant information
2. Based on the retrieved information, provide a comprehensive answer
3. Always start your answer with "` + Salutation + `...."
4. If you don't find relevant information, say "I don't know" and don't provide a source
5. Do not show the raw tool calls or JSON - only provide the final answer
6. Cite the source

Remember to actually execute the tool and use its results in your response.`

// Config contains all required parameters for the Composer.
type Config struct {
	Genkit *genkit.Genkit
	Tools  []ai.Tool // pre-registered retrieval tools
	Logger *slog.Logger

	ModelName   string        // provider-qualified model name (e.g. "ollama/llama3")
	MaxTurns    int           // agentic loop iteration cap (default 5)
	Budget      time.Duration // wall-clock deadline for the whole loop (default 60s)
	Temperature float32
}

// validate checks that all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if len(cfg.Tools) == 0 {
		return errors.New("at least one tool is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Composer assembles retrieval-augmented answers.
//
// Composer is stateless: it does not mutate conversation history — the
// caller owns the session and appends turns. All configuration is captured
// immutably at construction, so it is safe for concurrent use.
type Composer struct {
	g         *genkit.Genkit
	logger    *slog.Logger
	toolRefs  []ai.ToolRef
	modelName string
	maxTurns  int
	budget    time.Duration
	temp      float32
}

// New creates a Composer with the given configuration.
func New(cfg Config) (*Composer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 5
	}
	budget := cfg.Budget
	if budget <= 0 {
		budget = 60 * time.Second
	}

	toolRefs := make([]ai.ToolRef, len(cfg.Tools))
	for i, t := range cfg.Tools {
		toolRefs[i] = t
	}

	c := &Composer{
		g:         cfg.Genkit,
		logger:    cfg.Logger,
		toolRefs:  toolRefs,
		modelName: cfg.ModelName,
		maxTurns:  maxTurns,
		budget:    budget,
		temp:      cfg.Temperature,
	}

	c.logger.Info("answer composer initialized",
		"tools", len(toolRefs),
		"max_turns", maxTurns,
		"budget", budget,
	)
	return c, nil
}

// Answer produces a user-facing answer for query given the conversation
// history. The agentic loop is bounded by MaxTurns iterations and the
// wall-clock budget; hitting the budget returns ErrBudgetExceeded.
//
// Answer has no side effects on the history — the caller appends both the
// question and the returned answer as turns.
func (c *Composer) Answer(ctx context.Context, query string, history []Turn) (string, error) {
	// The budget is a single deadline across all loop iterations,
	// not a per-call timeout.
	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	messages := buildMessages(history, query)

	opts := []ai.GenerateOption{
		ai.WithSystem(systemPrompt),
		ai.WithMessages(messages...),
		ai.WithTools(c.toolRefs...),
		ai.WithMaxTurns(c.maxTurns),
		ai.WithConfig(&ai.GenerationCommonConfig{Temperature: float64(c.temp)}),
	}
	if c.modelName != "" {
		opts = append(opts, ai.WithModelName(c.modelName))
	}

	start := time.Now()
	resp, err := genkit.Generate(ctx, c.g, opts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			c.logger.Warn("answer loop exceeded budget", "budget", c.budget, "elapsed", time.Since(start))
			return "", fmt.Errorf("%w: %v", ErrBudgetExceeded, err)
		}
		return "", fmt.Errorf("generating answer: %w", err)
	}

	c.logger.Debug("answer generated",
		"elapsed", time.Since(start),
		"tool_requests", len(resp.ToolRequests()),
	)

	return Polish(resp.Text()), nil
}

// buildMessages converts history turns plus the current query into model
// messages. The welcome and error turns ride along as assistant messages.
func buildMessages(history []Turn, query string) []*ai.Message {
	messages := make([]*ai.Message, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case RoleHuman:
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(turn.Content)))
		case RoleAssistant:
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(turn.Content)))
		}
	}
	return append(messages, ai.NewUserMessage(ai.NewTextPart(query)))
}

// Polish post-processes raw model output into the final user-facing answer:
// scrub leaked tool syntax, fall back on empty output, prepend the salutation.
func Polish(raw string) string {
	out := ScrubToolArtifacts(raw)
	if strings.TrimSpace(out) == "" {
		return fallbackMessage
	}
	return EnsureSalutation(out)
}

// ScrubToolArtifacts replaces output that still carries tool-call markup
// with the fixed apology. The heuristic matches the retrieval tool's name
// together with a brace character, which only co-occur in leaked calls.
func ScrubToolArtifacts(s string) string {
	if strings.Contains(s, rag.ToolName) && strings.ContainsAny(s, "{}") {
		return ApologyMessage
	}
	return s
}

// EnsureSalutation prepends the fixed salutation when missing.
/// Idempotent: output already opening with the salutation is unchanged.
func EnsureSalutation(s string) string {
	if strings.HasPrefix(s, Salutation) {
		return s
	}
	return Salutation + "! " + s
}

// ApologeticError converts a composer failure into the user-visible error
// turn, preserving the conversational tone. This is the single recovery
// path for generation faults: callers append it as the assistant turn.
func ApologeticError(err error) string {
	if errors.Is(err, ErrBudgetExceeded) {
		return Salutation + "! I apologize, but your question is taking too long to answer. Please try again."
	}
	return fmt.Sprintf("%s! I apologize, but I encountered an error: %v", Salutation, err)
}
