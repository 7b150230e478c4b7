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


package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// systemPrompt frames every completion request.
const systemPrompt = "You are an assistant that answers questions about documents the user has provided."

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config, clientOpts ...openai.Option) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := []openai.Option{
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.CompletionModel),
	}
	client, err := openai.New(append(opts, clientOpts...)...)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-completer"),
	}, nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config, clientOpts ...openai.Option) (ai.Completer, error) {
	return newCompleter(config, clientOpts...)
}

// Complete sends prompt as the user turn of a chat and returns the first choice.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		classified := classifyCompletionError(err)
		c.logger.Error("failed to generate content", "err", classified)
		return "", classified
	}

	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model")
		return "", fmt.Errorf("%w: no choices returned", core.ErrCompletionFailed)
	}

	return response.Choices[0].Content, nil
}
