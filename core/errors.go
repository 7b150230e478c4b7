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


package core

import "errors"

// Pipeline failure conditions. Callers match them with errors.Is.
var (
	// ErrContentUnavailable indicates there was no text to train on.
	ErrContentUnavailable = errors.New("no content available")

	// ErrEmbeddingRateLimited indicates the embedding provider throttled the request.
	// This is the only embedding failure that is retried.
	ErrEmbeddingRateLimited = errors.New("embedding rate limited")

	// ErrEmbeddingFailed indicates a non-retryable embedding failure,
	// including a successful response without an embedding payload.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrStoreNotFound indicates no vector store has been written yet.
	ErrStoreNotFound = errors.New("vector store not found")

	// ErrStoreCorrupt indicates the vector store exists but cannot be parsed.
	ErrStoreCorrupt = errors.New("vector store corrupt")

	// ErrStoreEmpty indicates the vector store holds zero records.
	ErrStoreEmpty = errors.New("vector store empty")

	// ErrCompletionFailed indicates the generative completion call failed.
	ErrCompletionFailed = errors.New("completion failed")

	// ErrDimensionMismatch indicates two embeddings of different lengths were compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")
)
