package knowledge

import "time"

// Document represents a knowledge document.
type Document struct {
	ID        string            // Unique identifier
	Content   string            // Document text content
	Metadata  map[string]string // Optional metadata (source, collection, etc.)
	CreatedAt time.Time         // Creation timestamp
}

// Result represents a single search result with similarity score.
type Result struct {
	Document   Document
	Similarity float32 // Cosine similarity score (0-1)
}

// Source returns the document's source attribution, or "unknown" when the
// document carries no source metadata.
func (d Document) Source() string {
	if s, ok := d.Metadata["source"]; ok && s != "" {
		return s
	}
	return "unknown"
}

// SearchOption configures search behavior using the functional options pattern.
type SearchOption func(*searchConfig)

// searchConfig holds internal search configuration.
type searchConfig struct {
	topK    int32
	filter  map[string]string
	timeout time.Duration
}

// defaultSearchTimeout bounds a single vector search query.
const defaultSearchTimeout = 10 * time.Second

// WithTopK sets the maximum number of results to return.
// Default is 5 if not specified.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = int32(k)
		}
	}
}

// WithFilter adds a metadata filter to restrict search results.
// Multiple calls to WithFilter add additional filters (AND logic).
// Example: WithFilter("collection", "krishna_knowledge")
func WithFilter(key, value string) SearchOption {
	return func(c *searchConfig) {
		if c.filter == nil {
			c.filter = make(map[string]string)
		}
		c.filter[key] = value
	}
}

// buildSearchConfig applies search options and returns the final configuration.
func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: defaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
