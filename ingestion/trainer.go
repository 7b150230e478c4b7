package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/chunk"
	"github.com/poiesic/ragbot/core"
	"github.com/poiesic/ragbot/storage"
)

// Trainer builds a vector store from raw text.
type Trainer struct {
	store     storage.VectorStore
	embedder  ai.Embedder
	chunkSize int
	progress  io.Writer
	logger    *slog.Logger
}

// Option configures a Trainer.
type Option func(*Trainer) error

// WithChunkSize sets the maximum number of words per chunk.
// Default is chunk.DefaultSize.
func WithChunkSize(size int) Option {
	return func(t *Trainer) error {
		if size < 1 {
			return fmt.Errorf("%w: %d", chunk.ErrInvalidSize, size)
		}
		t.chunkSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
		return nil
	}
}

// WithProgress writes a progress line to w while chunks are embedded.
func WithProgress(w io.Writer) Option {
	return func(t *Trainer) error {
		t.progress = w
		return nil
	}
}

// NewTrainer creates a new trainer.
func NewTrainer(store storage.VectorStore, provider ai.AIProvider, opts ...Option) (*Trainer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	t := &Trainer{
		store:     store,
		embedder:  provider.Embedder(),
		chunkSize: chunk.DefaultSize,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// ChunkSize returns the maximum number of words per chunk.
func (t *Trainer) ChunkSize() int {
	return t.chunkSize
}

// Train chunks text, embeds every chunk in order and overwrites the store
// with the chunks that succeeded. The store is written even when every chunk
// failed. Only empty input, a canceled context or a failed save abort the run.
func (t *Trainer) Train(ctx context.Context, text string) (*Report, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrContentUnavailable
	}

	chunks, err := chunk.Split(text, t.chunkSize)
	if err != nil {
		return nil, err
	}
	t.logger.Info("training", "chunks", len(chunks), "chunkSize", t.chunkSize)

	return t.embedAndSave(ctx, chunks)
}

// Reembed embeds the text of every stored record again and overwrites the
// store with the results. It is used after switching embedding models.
// Records whose embedding fails are dropped, like skipped chunks in Train.
func (t *Trainer) Reembed(ctx context.Context) (*Report, error) {
	records, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	if len(records) == 0 {
		return nil, core.ErrStoreEmpty
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}
	t.logger.Info("reembedding", "records", len(texts))

	return t.embedAndSave(ctx, texts)
}

// embedAndSave embeds chunks in order and overwrites the store with the ones
// that succeeded. The store is written even when every chunk failed.
func (t *Trainer) embedAndSave(ctx context.Context, chunks []string) (*Report, error) {
	proc, err := newEmbeddingProcessor(t.embedder, t.logger)
	if err != nil {
		return nil, err
	}

	var tracker *ProgressTracker
	if t.progress != nil {
		tracker = NewProgressTracker(t.progress, len(chunks), 1)
		tracker.Start()
	}

	report := &Report{Results: make([]ChunkResult, 0, len(chunks))}
	records := make([]core.Record, 0, len(chunks))
	for i, text := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := proc.process(ctx, i, text)
		report.Results = append(report.Results, ChunkResult{Index: i, Text: text, Err: err})
		if err != nil {
			report.Skipped++
		} else {
			records = append(records, record)
		}
		if tracker != nil {
			tracker.Done(err == nil)
		}
	}
	if tracker != nil {
		tracker.Finish()
	}

	if err := t.store.Save(ctx, records); err != nil {
		t.logger.Error("error saving vector store", "err", err)
		return nil, fmt.Errorf("save store: %w", err)
	}
	report.Records = len(records)

	if report.Empty() {
		t.logger.Warn("no chunks were embedded; the store is now empty", "skipped", report.Skipped)
	} else {
		t.logger.Info("embedding complete", "records", report.Records, "skipped", report.Skipped)
	}
	return report, nil
}
