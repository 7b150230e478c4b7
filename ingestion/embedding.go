package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/core"
)

// embeddingProcessor turns chunks into records.
// It pins the dimensionality of the run to the first vector it produces.
type embeddingProcessor struct {
	embedder   ai.Embedder
	dimensions int
	logger     *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		embedder: embedder,
		logger:   logger.With("processor", "embeddings"),
	}, nil
}

// process embeds a single chunk.
func (p *embeddingProcessor) process(ctx context.Context, index int, text string) (core.Record, error) {
	vector, err := p.embedder.EmbedText(ctx, text, ai.TaskTypeDocument)
	if err != nil {
		p.logger.Warn("error generating embedding for chunk", "chunk", index, "err", err)
		return core.Record{}, err
	}
	if len(vector) == 0 {
		p.logger.Warn("embedding service returned an empty vector", "chunk", index)
		return core.Record{}, fmt.Errorf("%w: empty vector", core.ErrEmbeddingFailed)
	}

	if p.dimensions == 0 {
		p.dimensions = len(vector)
	} else if len(vector) != p.dimensions {
		p.logger.Warn("embedding dimensionality changed mid-run", "chunk", index,
			"got", len(vector), "want", p.dimensions)
		return core.Record{}, fmt.Errorf("%w: got %d, want %d", core.ErrDimensionMismatch, len(vector), p.dimensions)
	}

	p.logger.Debug("embedded chunk", "chunk", index, "dimensions", len(vector))
	return core.Record{Text: text, Embedding: vector}, nil
}
