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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ragbot/ai"
)

// EmbeddingCache implements ai.EmbeddingCache on a Backend.
type EmbeddingCache struct {
	backend *Backend
	ttl     time.Duration
}

var _ ai.EmbeddingCache = (*EmbeddingCache)(nil)

// CacheOption configures an EmbeddingCache.
type CacheOption func(*EmbeddingCache)

// WithTTL expires cached vectors after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *EmbeddingCache) {
		c.ttl = ttl
	}
}

// NewEmbeddingCache creates a cache on backend. The backend stays owned by the caller.
func NewEmbeddingCache(backend *Backend, opts ...CacheOption) (*EmbeddingCache, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	c := &EmbeddingCache{backend: backend}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the vector stored under key.
func (c *EmbeddingCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var vector []float32
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			vector, err = decodeVector(val)
			return err
		})
	}, false)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return vector, true, nil
}

// Put stores vector under key, replacing any previous value.
func (c *EmbeddingCache) Put(ctx context.Context, key string, vector []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := badger.NewEntry(makeEmbeddingKey(key), encodeVector(vector))
	if c.ttl > 0 {
		entry = entry.WithTTL(c.ttl)
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		return tx.SetEntry(entry)
	}, true)
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len() (int, error) {
	return c.backend.CountPrefix([]byte(embeddingCachePrefix + ":"))
}

// Clear removes every cached vector.
func (c *EmbeddingCache) Clear() error {
	return c.backend.DropPrefix([]byte(embeddingCachePrefix + ":"))
}
