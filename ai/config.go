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


package ai

import (
	"fmt"
	"strings"
	"time"
)

// DefaultHost is the OpenAI-compatible endpoint of the Gemini API.
const DefaultHost = "https://generativelanguage.googleapis.com/v1beta/openai"

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	EmbeddingHost string `yaml:"embedding_host"`

	// CompletionHost is the base URL for the generative completion API.
	CompletionHost string `yaml:"completion_host"`

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "gemini-embedding-001", "text-embedding-3-small"
	EmbeddingModel string `yaml:"embedding_model"`

	// CompletionModel is the model identifier used to answer queries.
	// Example: "gemini-2.0-flash", "gpt-4o-mini"
	CompletionModel string `yaml:"completion_model"`

	// APIKey authenticates against both services. Required.
	APIKey string `yaml:"api_key"`

	// EmbeddingDimensions requests a specific vector length.
	// Zero leaves the choice to the model.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`

	// MaxRetries is the maximum number of embedding attempts on rate limiting.
	// Default: 5
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the base backoff delay, doubled after every rate-limited attempt.
	// Default: 3s
	RetryDelay time.Duration `yaml:"retry_delay"`

	// DocumentInstruction is prepended to text embedded as TaskTypeDocument.
	// Empty by default. Models trained on task prompts want one, e.g.
	// EmbeddingGemma takes "title: none | text: ".
	DocumentInstruction string `yaml:"document_instruction"`

	// QueryInstruction is prepended to text embedded as TaskTypeQuery.
	// Empty by default. For EmbeddingGemma use "task: search result | query: ".
	QueryInstruction string `yaml:"query_instruction"`

	// Temperature is the sampling temperature for completions.
	// Default: 0.2
	Temperature float64 `yaml:"temperature"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithCompletionHost sets the completion service host URL.
func WithCompletionHost(host string) ConfigOption {
	return func(c *Config) {
		c.CompletionHost = host
	}
}

// WithHost sets both embedding and completion hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.CompletionHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCompletionModel sets the completion model identifier.
func WithCompletionModel(model string) ConfigOption {
	return func(c *Config) {
		c.CompletionModel = model
	}
}

// WithAPIKey sets the credential used for both services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRetry sets the retry budget and base backoff delay for embeddings.
func WithRetry(maxRetries int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryDelay = delay
	}
}

// WithInstructions sets the task-type instruction prefixes.
func WithInstructions(document, query string) ConfigOption {
	return func(c *Config) {
		c.DocumentInstruction = document
		c.QueryInstruction = query
	}
}

// DefaultConfig returns a Config pointed at the Gemini OpenAI-compatible API.
// APIKey is left empty and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:   DefaultHost,
		CompletionHost:  DefaultHost,
		EmbeddingModel:  "gemini-embedding-001",
		CompletionModel: "gemini-2.0-flash",
		MaxRetries:      5,
		RetryDelay:      3000 * time.Millisecond,
		Temperature:     0.2,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    WithEmbeddingModel("text-embedding-004"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Instruction returns the prefix configured for a task type.
func (c *Config) Instruction(task TaskType) string {
	switch task {
	case TaskTypeDocument:
		return c.DocumentInstruction
	case TaskTypeQuery:
		return c.QueryInstruction
	default:
		return ""
	}
}

// Normalize puts the configuration in canonical form.
// Hosts lose trailing slashes and an empty CompletionHost inherits EmbeddingHost.
func (c *Config) Normalize() {
	c.EmbeddingHost = strings.TrimRight(strings.TrimSpace(c.EmbeddingHost), "/")
	c.CompletionHost = strings.TrimRight(strings.TrimSpace(c.CompletionHost), "/")
	if c.CompletionHost == "" {
		c.CompletionHost = c.EmbeddingHost
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.APIKey == "" {
		return fmt.Errorf("%w: APIKey is required", ErrInvalidConfig)
	}
	if c.EmbeddingHost == "" {
		return fmt.Errorf("%w: EmbeddingHost is required", ErrInvalidConfig)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: EmbeddingModel is required", ErrInvalidConfig)
	}
	if c.CompletionModel == "" {
		return fmt.Errorf("%w: CompletionModel is required", ErrInvalidConfig)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: MaxRetries must be at least 1", ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: RetryDelay must not be negative", ErrInvalidConfig)
	}
	if c.EmbeddingDimensions < 0 {
		return fmt.Errorf("%w: EmbeddingDimensions must not be negative", ErrInvalidConfig)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: Temperature must be between 0 and 2", ErrInvalidConfig)
	}
	return nil
}
