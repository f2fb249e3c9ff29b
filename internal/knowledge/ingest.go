package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Chunking bounds for ingested text. Paragraphs shorter than minChunkRunes
// are merged forward; longer ones are split on sentence boundaries so a
// single chunk never dwarfs the embedding context.
const (
	minChunkRunes = 200
	maxChunkRunes = 2000
)

// Ingestor indexes plain-text source files into a Store.
type Ingestor struct {
	store      *Store
	collection string
	logger     *slog.Logger
}

// NewIngestor creates an Ingestor writing into the given collection.
func NewIngestor(store *Store, collection string, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{store: store, collection: collection, logger: logger}
}

// IngestFile chunks a text file and indexes every chunk with source
// attribution. Returns the number of chunks indexed.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	source := filepath.Base(path)
	chunks := ChunkText(string(data))
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no indexable content in %s", path)
	}

	indexed := 0
	for i, chunk := range chunks {
		doc := Document{
			ID:      chunkID(source, chunk),
			Content: chunk,
			Metadata: map[string]string{
				"collection": in.collection,
				"source":     source,
			},
		}
		if err := in.store.Add(ctx, doc); err != nil {
			return indexed, fmt.Errorf("indexing chunk %d of %s: %w", i+1, source, err)
		}
		indexed++
	}

	in.logger.Info("ingested file", "source", source, "chunks", indexed)
	return indexed, nil
}

// ChunkText splits text into indexable chunks on blank-line paragraph
// boundaries, merging short paragraphs and splitting oversized ones.
func ChunkText(text string) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var chunks []string
	var pending string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if pending != "" {
			p = pending + "\n\n" + p
			pending = ""
		}

		switch {
		case len([]rune(p)) < minChunkRunes:
			pending = p
		case len([]rune(p)) > maxChunkRunes:
			chunks = append(chunks, splitLong(p)...)
		default:
			chunks = append(chunks, p)
		}
	}
	if pending != "" {
		chunks = append(chunks, pending)
	}
	return chunks
}

// splitLong splits an oversized paragraph on sentence boundaries,
// packing sentences greedily up to maxChunkRunes.
func splitLong(p string) []string {
	sentences := strings.SplitAfter(p, ". ")

	var chunks []string
	var b strings.Builder
	for _, s := range sentences {
		if b.Len() > 0 && len([]rune(b.String()))+len([]rune(s)) > maxChunkRunes {
			chunks = append(chunks, strings.TrimSpace(b.String()))
			b.Reset()
		}
		b.WriteString(s)
	}
	if b.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(b.String()))
	}
	return chunks
}

// chunkID derives a stable document ID from source and content,
// so re-ingesting the same file upserts instead of duplicating.
func chunkID(source, content string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + content))
	return hex.EncodeToString(sum[:16])
}
