package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/core"
	"github.com/poiesic/ragbot/storage"
)

// DefaultThreshold is the similarity a match must exceed to be used as context.
const DefaultThreshold float32 = 0.7

// Retrieval is the outcome of looking a query up in the store.
type Retrieval struct {
	// Prompt is the text handed to the completer.
	Prompt string
	// Match is the best scoring record, nil if there was none.
	Match *core.Match
	// UsedContext reports whether Match was injected into Prompt.
	UsedContext bool
}

// Answer is a completed query.
type Answer struct {
	Retrieval
	// Text is the completer's reply, verbatim.
	Text string
}

// Searcher answers queries against a trained vector store.
type Searcher struct {
	store     storage.VectorStore
	embedder  ai.Embedder
	completer ai.Completer
	threshold float32
	monitor   QueryMonitor
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
		}
		s.threshold = threshold
		return nil
	}
}

// WithMonitor attaches a monitor notified at each stage of a query.
func WithMonitor(monitor QueryMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.VectorStore, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		store:     store,
		embedder:  provider.Embedder(),
		completer: provider.Completer(),
		threshold: DefaultThreshold,
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Threshold returns the similarity a match must exceed to be used as context.
func (s *Searcher) Threshold() float32 {
	return s.threshold
}

// Lookup loads the store, embeds query and builds the prompt without
// calling the completer.
func (s *Searcher) Lookup(ctx context.Context, query string) (*Retrieval, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	s.monitor.Start(query)

	records, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("error loading vector store", "err", err)
		return nil, fmt.Errorf("load store: %w", err)
	}
	s.monitor.AfterLoad(len(records))
	if len(records) == 0 {
		return nil, core.ErrStoreEmpty
	}

	embedding, err := s.embedder.EmbedText(ctx, query, ai.TaskTypeQuery)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
	}
	s.monitor.AfterEmbedding(len(embedding))

	match, err := BestMatch(embedding, records)
	if err != nil {
		s.logger.Error("error scoring records", "err", err)
		return nil, err
	}

	retrieval := &Retrieval{Match: match}
	if match != nil && match.Score > s.threshold {
		s.logger.Debug("found relevant passage", "score", match.Score)
		retrieval.UsedContext = true
		retrieval.Prompt = contextPrompt(match.Text, query)
	} else {
		s.logger.Debug("no passage above threshold", "threshold", s.threshold)
		retrieval.Prompt = plainPrompt(query)
	}
	s.monitor.AfterMatch(match, retrieval.UsedContext)

	return retrieval, nil
}

// Ask answers query, grounding the prompt in the best stored passage when it
// scores above the threshold.
func (s *Searcher) Ask(ctx context.Context, query string) (*Answer, error) {
	retrieval, err := s.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}

	text, err := s.completer.Complete(ctx, retrieval.Prompt)
	if err != nil {
		s.logger.Error("error generating answer", "err", err)
		if !errors.Is(err, core.ErrCompletionFailed) {
			err = fmt.Errorf("%w: %w", core.ErrCompletionFailed, err)
		}
		return nil, err
	}

	answer := &Answer{Retrieval: *retrieval, Text: text}
	s.monitor.Finish(answer)
	return answer, nil
}
