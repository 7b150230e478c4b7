package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// The task type is conveyed as an instruction prefix on the embedded text.
type Embedder struct {
	client embeddings.EmbedderClient
	config *ai.Config
	logger *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config, clientOpts ...openai.Option) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []openai.Option{
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	}
	if config.EmbeddingDimensions > 0 {
		opts = append(opts, openai.WithEmbeddingDimensions(config.EmbeddingDimensions))
	}
	client, err := openai.New(append(opts, clientOpts...)...)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		client: client,
		config: config,
		logger: slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config, clientOpts ...openai.Option) (ai.Embedder, error) {
	return newEmbedder(config, clientOpts...)
}

// EmbedText generates a vector embedding for a single text string.
// Rate limiting surfaces as core.ErrEmbeddingRateLimited; every other
// failure, including an empty payload, as core.ErrEmbeddingFailed.
func (e *Embedder) EmbedText(ctx context.Context, text string, task ai.TaskType) ([]float32, error) {
	if !task.Valid() {
		return nil, fmt.Errorf("%w: unknown task type %d", core.ErrEmbeddingFailed, task)
	}

	input := embeddings.MaybeRemoveNewLines([]string{e.config.Instruction(task) + text}, true)
	e.logger.Debug("generating embedding", "task", task.String(), "length", len(text))

	vectors, err := e.client.CreateEmbedding(ctx, input)
	if err != nil {
		classified := classifyEmbeddingError(err)
		e.logger.Error("failed to generate embedding", "task", task.String(), "err", classified)
		return nil, classified
	}

	if len(vectors) == 0 || len(vectors[0]) == 0 {
		e.logger.Warn("embedder returned empty result")
		return nil, fmt.Errorf("%w: response contained no embedding", core.ErrEmbeddingFailed)
	}

	return vectors[0], nil
}
