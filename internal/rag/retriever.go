// Package rag bridges the knowledge store to Genkit retrieval.
//
// It defines the ai.Retriever over knowledge.Store and the retrieval tool
// the chat model calls during the agentic answer loop. The tool follows the
// external tool convention: it never fails the model loop, encoding faults
// and empty results as text.
package rag

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/gayu2216/krishna-knowledge/internal/knowledge"
)

// Default and maximum result counts for retrieval.
const (
	DefaultTopK = 3
	MaxTopK     = 10
)

// Retriever bridges knowledge.Store to the Genkit ai.Retriever interface,
// scoped to a single collection.
type Retriever struct {
	store      *knowledge.Store
	collection string
}

// New creates a Retriever over the given knowledge store and collection.
func New(store *knowledge.Store, collection string) *Retriever {
	return &Retriever{
		store:      store,
		collection: collection,
	}
}

// Define registers a Genkit retriever that searches the collection.
// Results are ordered by descending similarity, at most k documents.
func (r *Retriever) Define(g *genkit.Genkit, name string) ai.Retriever {
	return genkit.DefineRetriever(
		g, name, nil,
		func(ctx context.Context, req *ai.RetrieverRequest) (*ai.RetrieverResponse, error) {
			queryText := extractQueryText(req)
			topK := extractTopK(req, DefaultTopK)

			results, err := r.search(ctx, queryText, topK)
			if err != nil {
				return nil, err
			}

			return &ai.RetrieverResponse{
				Documents: toGenkitDocuments(results),
			}, nil
		},
	)
}

// search runs a collection-filtered similarity search.
func (r *Retriever) search(ctx context.Context, query string, topK int) ([]knowledge.Result, error) {
	return r.store.Search(ctx, query,
		knowledge.WithTopK(topK),
		knowledge.WithFilter("collection", r.collection),
	)
}

// extractQueryText extracts text from RetrieverRequest.Query.
func extractQueryText(req *ai.RetrieverRequest) string {
	if req.Query != nil && len(req.Query.Content) > 0 {
		return req.Query.Content[0].Text
	}
	return ""
}

// extractTopK extracts k from request options, clamped to [1, MaxTopK].
func extractTopK(req *ai.RetrieverRequest, defaultK int) int {
	opts, ok := req.Options.(map[string]any)
	if !ok {
		return defaultK
	}
	k, exists := opts["k"]
	if !exists {
		return defaultK
	}

	var kInt int
	switch v := k.(type) {
	case int:
		kInt = v
	case int32:
		kInt = int(v)
	case int64:
		kInt = int(v)
	case float64:
		kInt = int(v)
	default:
		return defaultK
	}

	if kInt < 1 || kInt > MaxTopK {
		return defaultK
	}
	return kInt
}

// toGenkitDocuments converts knowledge results to Genkit ai.Document values,
// carrying source attribution and similarity in metadata.
func toGenkitDocuments(results []knowledge.Result) []*ai.Document {
	docs := make([]*ai.Document, len(results))
	for i, result := range results {
		metadata := make(map[string]any, len(result.Document.Metadata)+1)
		for k, v := range result.Document.Metadata {
			metadata[k] = v
		}
		metadata["source"] = result.Document.Source()
		metadata["similarity"] = result.Similarity

		docs[i] = ai.DocumentFromText(result.Document.Content, metadata)
	}
	return docs
}
