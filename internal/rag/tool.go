package rag

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/gayu2216/krishna-knowledge/internal/knowledge"
)

// ToolName is the Genkit tool name for scripture retrieval.
// The chat composer also uses it to detect leaked tool syntax in output.
const ToolName = "search_scripture"

// NoResultsMessage is the tool's textual result when nothing relevant exists.
// Returned as content, not as an error: retrieval must never fail the loop.
const NoResultsMessage = "No relevant information found in the knowledge base."

// SearchInput defines input for the search_scripture tool.
type SearchInput struct {
	Query string `json:"query" jsonschema_description:"The search query string"`
	TopK  int    `json:"topK,omitempty" jsonschema_description:"Maximum passages to return (1-10)"`
}

// RegisterTool registers the search_scripture tool with Genkit.
// The tool returns formatted passages with source attribution. Faults are
// encoded in the returned text rather than raised, so a retrieval problem
// reaches the model as information instead of aborting the turn.
func RegisterTool(g *genkit.Genkit, r *Retriever, logger *slog.Logger) ai.Tool {
	if logger == nil {
		logger = slog.Default()
	}

	return genkit.DefineTool(g, ToolName,
		"Retrieve passages about Krishna and Hindu philosophy from the knowledge base. "+
			"Use this to ground answers in scripture before responding. "+
			"Returns passages with their sources, or a message when nothing relevant exists.",
		func(ctx *ai.ToolContext, input SearchInput) (string, error) {
			topK := input.TopK
			if topK < 1 || topK > MaxTopK {
				topK = DefaultTopK
			}

			results, err := r.search(ctx, input.Query, topK)
			if err != nil {
				logger.Warn("retrieval failed", "query", input.Query, "error", err)
				return fmt.Sprintf("Error retrieving information: %v", err), nil
			}
			if len(results) == 0 {
				logger.Debug("retrieval found nothing", "query", input.Query)
				return NoResultsMessage, nil
			}

			logger.Debug("retrieval succeeded", "query", input.Query, "passages", len(results))
			return FormatPassages(results), nil
		})
}

// FormatPassages renders retrieval results as source-attributed text blocks,
// the shape the answer prompt expects for citation.
func FormatPassages(results []knowledge.Result) string {
	blocks := make([]string, len(results))
	for i, result := range results {
		blocks[i] = fmt.Sprintf("Source: %s\nContent: %s",
			result.Document.Source(), result.Document.Content)
	}
	return strings.Join(blocks, "\n\n")
}
