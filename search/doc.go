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

// Package search answers questions against a trained vector store.
//
// CosineSimilarity and BestMatch implement the exhaustive nearest-record
// lookup. The Searcher loads the store, embeds the query with the QUERY task
// type, and builds a prompt for the completer. The matched passage is only
// injected when its score is strictly above the configured threshold
// (DefaultThreshold unless overridden with WithThreshold).
package search
