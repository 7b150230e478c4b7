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


package ai

import (
	"context"
	"log/slog"

	"github.com/poiesic/ragbot/core"
)

// EmbeddingCache stores vectors by content key.
type EmbeddingCache interface {
	// Get returns the cached vector and true, or false on a miss.
	Get(ctx context.Context, key string) ([]float32, bool, error)
	// Put stores vector under key, replacing any previous value.
	Put(ctx context.Context, key string, vector []float32) error
}

// CachedEmbedder serves repeated embeddings from an EmbeddingCache.
// Cache failures are logged and fall through to the inner embedder.
type CachedEmbedder struct {
	inner     Embedder
	cache     EmbeddingCache
	namespace string
	onLookup  func(hit bool)
	logger    *slog.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

// CacheOption configures a CachedEmbedder.
type CacheOption func(*CachedEmbedder)

// WithLookupHook registers a callback receiving every hit or miss.
func WithLookupHook(hook func(hit bool)) CacheOption {
	return func(c *CachedEmbedder) {
		c.onLookup = hook
	}
}

// WithCacheLogger sets a custom logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedEmbedder) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachedEmbedder wraps inner with cache. namespace separates entries
// produced by different models; the embedding model name is a good choice.
func NewCachedEmbedder(inner Embedder, cache EmbeddingCache, namespace string, opts ...CacheOption) *CachedEmbedder {
	c := &CachedEmbedder{
		inner:     inner,
		cache:     cache,
		namespace: namespace,
		logger:    slog.Default().With("component", "cached-embedder"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EmbedText returns a cached vector or calls the inner embedder and stores the result.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string, task TaskType) ([]float32, error) {
	key := c.Key(text, task)

	vector, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("failed to read cached embedding", "key", key, "err", err)
	}
	if ok && len(vector) > 0 {
		c.lookup(true)
		return vector, nil
	}
	c.lookup(false)

	vector, err = c.inner.EmbedText(ctx, text, task)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(ctx, key, vector); err != nil {
		c.logger.Warn("failed to cache embedding", "key", key, "err", err)
	}
	return vector, nil
}

// Key returns the cache key for text embedded with task.
func (c *CachedEmbedder) Key(text string, task TaskType) string {
	return core.ContentKey(c.namespace, task.String(), text)
}

func (c *CachedEmbedder) lookup(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}
