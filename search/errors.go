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

package search

import "errors"

var (
	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidThreshold is returned for a threshold outside [-1, 1].
	ErrInvalidThreshold = errors.New("similarity threshold must be within [-1, 1]")

	// ErrEmptyQuery is returned when the query has no non-space characters.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrEmbeddingUnavailable is returned when the query could not be embedded.
	// The underlying embedding error is wrapped alongside it.
	ErrEmbeddingUnavailable = errors.New("query embedding unavailable")
)
