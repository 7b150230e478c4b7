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

// Package ragbot is a small retrieval-augmented question answering bot.
//
// A Bot is trained on one document at a time: the text is split into
// word-count chunks, each chunk is embedded, and the resulting records
// replace the contents of a JSON vector store. Questions are embedded the
// same way, matched against the store by cosine similarity, and answered by
// a generative model, with the best passage included in the prompt only when
// it is similar enough.
//
//	bot, err := ragbot.NewBot(ragbot.WithAIConfig(ai.NewConfig(ai.WithAPIKey(key))))
//	if err != nil {
//	    return err
//	}
//	defer bot.Close()
//
//	if _, err := bot.TrainURL(ctx, "https://example.com"); err != nil {
//	    return err
//	}
//	answer, err := bot.Ask(ctx, "What does example.com do?")
package ragbot
