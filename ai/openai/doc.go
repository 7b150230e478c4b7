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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library. Any endpoint speaking the OpenAI wire format works; the default
// configuration targets the Gemini API's OpenAI-compatible surface.
//
// # Usage
//
//	config := ai.NewConfig(ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "sample text", ai.TaskTypeDocument)
//	answer, err := provider.Completer().Complete(ctx, "What is in the document?")
//
// Errors are classified with langchaingo's error mapper: HTTP 429 and
// equivalent messages become core.ErrEmbeddingRateLimited, which callers
// may retry; anything else is core.ErrEmbeddingFailed or
// core.ErrCompletionFailed.
package openai
