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


// Package storage provides the storage abstraction layer for ragbot.
//
// Two kinds of storage exist:
//
//   - VectorStore: the trained knowledge base, a whole list of records
//     written by a training run and read by every query
//   - EmbeddingCache: a key-value cache of vectors (see ai.EmbeddingCache)
//
// Implementations live in sub-packages:
//
//   - storage/jsonfile: VectorStore as a human-readable JSON file
//   - storage/badger: EmbeddingCache on BadgerDB
//
// A VectorStore is never updated in place. Save replaces the previous
// contents entirely and Load returns everything.
//
// # Usage
//
//	store := jsonfile.New("data-gemini.json")
//	if err := store.Save(ctx, records); err != nil {
//	    return err
//	}
//	records, err := store.Load(ctx)
//	if errors.Is(err, core.ErrStoreNotFound) {
//	    // nothing trained yet
//	}
package storage
