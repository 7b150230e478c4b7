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


package storage

import (
	"context"

	"github.com/poiesic/ragbot/core"
)

// VectorStore persists the records produced by a training run.
type VectorStore interface {
	// Save replaces the stored records with records, in order.
	// An empty slice is valid and yields an empty store.
	Save(ctx context.Context, records []core.Record) error

	// Load returns every stored record in the order they were saved.
	// Fails with core.ErrStoreNotFound if nothing has been saved and
	// core.ErrStoreCorrupt if the stored data cannot be parsed.
	Load(ctx context.Context) ([]core.Record, error)
}

// Locator is implemented by stores that live at a filesystem path.
type Locator interface {
	Location() string
}
