// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ragbot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/ai/openai"
	"github.com/poiesic/ragbot/config"
	"github.com/poiesic/ragbot/ingestion"
	"github.com/poiesic/ragbot/metrics"
	"github.com/poiesic/ragbot/search"
	"github.com/poiesic/ragbot/source"
	"github.com/poiesic/ragbot/storage"
	"github.com/poiesic/ragbot/storage/badger"
	"github.com/poiesic/ragbot/storage/jsonfile"
)

// ErrCacheDisabled is returned by cache maintenance calls on a Bot built
// without WithCache.
var ErrCacheDisabled = errors.New("embedding cache is not enabled")

// Bot trains a vector store from documents and answers questions against it.
// Training runs are serialized; queries may run concurrently with each other.
type Bot struct {
	store        storage.VectorStore
	provider     ai.AIProvider
	cacheBackend *badger.Backend
	cache        *badger.EmbeddingCache
	trainer      *ingestion.Trainer
	searcher     *search.Searcher
	metrics      *metrics.Metrics
	httpClient   *http.Client
	trainMu      sync.Mutex
	logger       *slog.Logger
}

// BotOption configures a Bot.
type BotOption func(*botOptions)

type botOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	store      storage.VectorStore
	storePath  string
	cachePath  string
	cacheTTL   time.Duration
	chunkSize  int
	threshold  *float32
	metrics    *metrics.Metrics
	progress   io.Writer
	httpClient *http.Client
	retrySleep ai.SleepFunc
	logger     *slog.Logger
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig(), which still needs an API key.
func WithAIConfig(config *ai.Config) BotOption {
	return func(o *botOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// Retry and caching are still layered over its embedder.
func WithProvider(provider ai.AIProvider) BotOption {
	return func(o *botOptions) {
		o.provider = provider
	}
}

// WithStore uses store instead of a JSON file.
func WithStore(store storage.VectorStore) BotOption {
	return func(o *botOptions) {
		o.store = store
	}
}

// WithStorePath sets the JSON vector store location.
// Default is jsonfile.DefaultPath.
func WithStorePath(path string) BotOption {
	return func(o *botOptions) {
		o.storePath = path
	}
}

// WithCache enables the on-disk embedding cache in dir.
// A zero ttl keeps entries forever.
func WithCache(dir string, ttl time.Duration) BotOption {
	return func(o *botOptions) {
		o.cachePath = dir
		o.cacheTTL = ttl
	}
}

// WithChunkSize sets the number of words per chunk.
func WithChunkSize(size int) BotOption {
	return func(o *botOptions) {
		o.chunkSize = size
	}
}

// WithThreshold sets the similarity a match must exceed to be used as context.
func WithThreshold(threshold float32) BotOption {
	return func(o *botOptions) {
		o.threshold = &threshold
	}
}

// WithMetrics records Prometheus metrics for every operation.
func WithMetrics(m *metrics.Metrics) BotOption {
	return func(o *botOptions) {
		o.metrics = m
	}
}

// WithProgress writes training progress to w.
func WithProgress(w io.Writer) BotOption {
	return func(o *botOptions) {
		o.progress = w
	}
}

// WithHTTPClient sets the client used to fetch web pages.
func WithHTTPClient(client *http.Client) BotOption {
	return func(o *botOptions) {
		o.httpClient = client
	}
}

// WithRetrySleep replaces the wait between rate-limited embedding attempts.
func WithRetrySleep(sleep ai.SleepFunc) BotOption {
	return func(o *botOptions) {
		o.retrySleep = sleep
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) BotOption {
	return func(o *botOptions) {
		o.logger = logger
	}
}

// WithConfig applies a loaded configuration file.
func WithConfig(cfg *config.Config) BotOption {
	return func(o *botOptions) {
		aiConfig := cfg.AI
		o.aiConfig = &aiConfig
		o.storePath = cfg.Store.Path
		o.cachePath = cfg.Cache.Path
		o.cacheTTL = cfg.Cache.TTL
		o.chunkSize = cfg.ChunkSize
		threshold := cfg.SimilarityThreshold()
		o.threshold = &threshold
	}
}

// NewBot wires the store, AI provider, optional cache and workflows together.
func NewBot(opts ...BotOption) (*Bot, error) {
	// Apply options
	options := &botOptions{
		aiConfig:  ai.DefaultConfig(), // Default if not provided
		storePath: jsonfile.DefaultPath,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.httpClient == nil {
		options.httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	store := options.store
	if store == nil {
		store = jsonfile.New(options.storePath, jsonfile.WithLogger(options.logger))
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	b := &Bot{
		store:      store,
		metrics:    options.metrics,
		httpClient: options.httpClient,
		logger:     options.logger,
	}

	embedder, err := b.buildEmbedder(provider.Embedder(), options)
	if err != nil {
		provider.Close()
		return nil, err
	}
	b.provider = &embedderOverride{AIProvider: provider, embedder: embedder}

	trainerOpts := []ingestion.Option{ingestion.WithLogger(options.logger)}
	if options.chunkSize > 0 {
		trainerOpts = append(trainerOpts, ingestion.WithChunkSize(options.chunkSize))
	}
	if options.progress != nil {
		trainerOpts = append(trainerOpts, ingestion.WithProgress(options.progress))
	}
	if b.trainer, err = ingestion.NewTrainer(store, b.provider, trainerOpts...); err != nil {
		b.Close()
		return nil, err
	}

	searchOpts := []search.Option{search.WithLogger(options.logger)}
	if options.threshold != nil {
		searchOpts = append(searchOpts, search.WithThreshold(*options.threshold))
	}
	if b.searcher, err = search.NewSearcher(store, b.provider, searchOpts...); err != nil {
		b.Close()
		return nil, err
	}

	return b, nil
}

// buildEmbedder layers instrumentation, rate-limit retries and the optional
// cache over the provider's embedder, innermost first.
func (b *Bot) buildEmbedder(inner ai.Embedder, options *botOptions) (ai.Embedder, error) {
	if options.aiConfig.MaxRetries < 1 {
		return nil, ai.ErrInvalidMaxAttempts
	}
	embedder := b.metrics.InstrumentEmbedder(inner)

	retryOpts := []ai.RetryOption{
		ai.WithRetryHook(b.metrics.RetryHook()),
		ai.WithRetryLogger(options.logger),
	}
	if options.retrySleep != nil {
		retryOpts = append(retryOpts, ai.WithSleep(options.retrySleep))
	}
	embedder = ai.NewRetryingEmbedder(embedder, options.aiConfig.MaxRetries, options.aiConfig.RetryDelay, retryOpts...)

	if options.cachePath == "" {
		return embedder, nil
	}

	backend, err := badger.OpenBackend(options.cachePath, false)
	if err != nil {
		return nil, err
	}
	var cacheOpts []badger.CacheOption
	if options.cacheTTL > 0 {
		cacheOpts = append(cacheOpts, badger.WithTTL(options.cacheTTL))
	}
	cache, err := badger.NewEmbeddingCache(backend, cacheOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	b.cacheBackend = backend
	b.cache = cache

	return ai.NewCachedEmbedder(embedder, cache, options.aiConfig.EmbeddingModel,
		ai.WithLookupHook(b.metrics.CacheHook()),
		ai.WithCacheLogger(options.logger),
	), nil
}

// Close releases the AI provider and the embedding cache.
func (b *Bot) Close() error {
	var errs []error

	// Close AI provider first
	if b.provider != nil {
		if err := b.provider.Close(); err != nil {
			b.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}

	if b.cacheBackend != nil && !b.cacheBackend.IsClosed() {
		if err := b.cacheBackend.Close(); err != nil {
			b.logger.Error("error closing embedding cache", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CacheLen returns the number of cached embeddings.
func (b *Bot) CacheLen() (int, error) {
	if b.cache == nil {
		return 0, ErrCacheDisabled
	}
	return b.cache.Len()
}

// ClearCache drops every cached embedding.
func (b *Bot) ClearCache() error {
	if b.cache == nil {
		return ErrCacheDisabled
	}
	b.logger.Info("clearing embedding cache")
	return b.cache.Clear()
}

// StoreLocation describes where the vector store lives, if known.
func (b *Bot) StoreLocation() string {
	if l, ok := b.store.(storage.Locator); ok {
		return l.Location()
	}
	return ""
}

// Threshold returns the similarity a match must exceed to be used as context.
func (b *Bot) Threshold() float32 {
	return b.searcher.Threshold()
}

// Train replaces the store contents with embeddings of text.
func (b *Bot) Train(ctx context.Context, text string) (*ingestion.Report, error) {
	b.trainMu.Lock()
	defer b.trainMu.Unlock()

	report, err := b.trainer.Train(ctx, text)
	if err != nil {
		return nil, err
	}
	b.metrics.ObserveTraining(report.Records, report.Skipped)
	return report, nil
}

// Reembed embeds the stored passages again with the current embedding model.
func (b *Bot) Reembed(ctx context.Context) (*ingestion.Report, error) {
	b.trainMu.Lock()
	defer b.trainMu.Unlock()

	report, err := b.trainer.Reembed(ctx)
	if err != nil {
		return nil, err
	}
	b.metrics.ObserveTraining(report.Records, report.Skipped)
	return report, nil
}

// TrainURL fetches a web page and trains on its readable text.
func (b *Bot) TrainURL(ctx context.Context, url string) (*ingestion.Report, error) {
	text, err := source.FetchURL(ctx, b.httpClient, url)
	if err != nil {
		return nil, err
	}
	return b.Train(ctx, text)
}

// TrainFile reads a local document and trains on its text.
func (b *Bot) TrainFile(ctx context.Context, path string) (*ingestion.Report, error) {
	text, err := source.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return b.Train(ctx, text)
}

// Ask answers query against the trained store.
func (b *Bot) Ask(ctx context.Context, query string) (*search.Answer, error) {
	answer, err := b.searcher.Ask(ctx, query)
	if err != nil {
		b.metrics.ObserveQuery(nil, false, err)
		return nil, err
	}
	b.metrics.ObserveQuery(answer.Match, answer.UsedContext, nil)
	return answer, nil
}

// Lookup finds the best passage for query without generating an answer.
func (b *Bot) Lookup(ctx context.Context, query string) (*search.Retrieval, error) {
	return b.searcher.Lookup(ctx, query)
}

// embedderOverride swaps the embedder of an AIProvider.
type embedderOverride struct {
	ai.AIProvider
	embedder ai.Embedder
}

func (p *embedderOverride) Embedder() ai.Embedder {
	return p.embedder
}
