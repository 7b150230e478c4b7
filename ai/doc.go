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


// Package ai provides abstractions for the AI services used by ragbot.
//
// The package defines three interfaces:
//
//   - Embedder: turns text into a vector for a TaskType (document or query)
//   - Completer: turns a prompt into generated text
//   - AIProvider: aggregates both for initialization and shutdown
//
// Implementations live in sub-packages:
//
//   - ai/openai: OpenAI-compatible APIs (Gemini by default) via langchaingo
//   - ai/mock: test doubles with injectable behavior and call counting
//
// Embedders compose. RetryingEmbedder retries rate-limited calls with
// exponential backoff (Backoff(base, n) = base * 2^n) and CachedEmbedder
// serves repeated texts from an EmbeddingCache:
//
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    return err
//	}
//	embedder := ai.NewRetryingEmbedder(provider.Embedder(), cfg.MaxRetries, cfg.RetryDelay)
//	vector, err := embedder.EmbedText(ctx, "Hello world", ai.TaskTypeQuery)
//
// Public constructors in implementation packages return interface types.
// Mock constructors return concrete types so tests can inspect them.
package ai
