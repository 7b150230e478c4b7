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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultHost, cfg.EmbeddingHost)
	assert.Equal(t, DefaultHost, cfg.CompletionHost)
	assert.Equal(t, "gemini-embedding-001", cfg.EmbeddingModel)
	assert.Equal(t, "gemini-2.0-flash", cfg.CompletionModel)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 3000*time.Millisecond, cfg.RetryDelay)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.Instruction(TaskTypeDocument), "no prompt prefix unless configured")
	assert.Empty(t, cfg.Instruction(TaskTypeQuery))
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, DefaultHost, cfg.EmbeddingHost)
		assert.Equal(t, 5, cfg.MaxRetries)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.CompletionHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithCompletionHost("http://complete:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://complete:9090/v1", cfg.CompletionHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithAPIKey("secret"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithCompletionModel("gpt-4o-mini"),
			WithRetry(3, time.Second),
			WithInstructions("doc: ", "query: "),
		)

		assert.Equal(t, "secret", cfg.APIKey)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.CompletionModel)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, time.Second, cfg.RetryDelay)
		assert.Equal(t, "doc: ", cfg.Instruction(TaskTypeDocument))
		assert.Equal(t, "query: ", cfg.Instruction(TaskTypeQuery))
		assert.Equal(t, "", cfg.Instruction(TaskType(0)))
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name               string
		embeddingHost      string
		completionHost     string
		expectedEmbedding  string
		expectedCompletion string
	}{
		{
			name:               "already canonical",
			embeddingHost:      "http://localhost:11434/v1",
			completionHost:     "http://localhost:11434/v1",
			expectedEmbedding:  "http://localhost:11434/v1",
			expectedCompletion: "http://localhost:11434/v1",
		},
		{
			name:               "trailing slashes",
			embeddingHost:      "http://localhost:11434/v1/",
			completionHost:     "http://localhost:11434//",
			expectedEmbedding:  "http://localhost:11434/v1",
			expectedCompletion: "http://localhost:11434",
		},
		{
			name:               "completion inherits embedding host",
			embeddingHost:      "http://embed:8080",
			completionHost:     "",
			expectedEmbedding:  "http://embed:8080",
			expectedCompletion: "http://embed:8080",
		},
		{
			name:               "empty hosts",
			embeddingHost:      "",
			completionHost:     "",
			expectedEmbedding:  "",
			expectedCompletion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost:  tt.embeddingHost,
				CompletionHost: tt.completionHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedCompletion, cfg.CompletionHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return NewConfig(WithAPIKey("secret"))
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingHost = "http://localhost:11434/v1/"

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing api key", func(c *Config) { c.APIKey = "" }, "APIKey"},
		{"blank api key", func(c *Config) { c.APIKey = "   " }, "APIKey"},
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = ""; c.CompletionHost = "" }, "EmbeddingHost"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing completion model", func(c *Config) { c.CompletionModel = "" }, "CompletionModel"},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "MaxRetries"},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }, "RetryDelay"},
		{"negative dimensions", func(c *Config) { c.EmbeddingDimensions = -1 }, "EmbeddingDimensions"},
		{"temperature too high", func(c *Config) { c.Temperature = 3 }, "Temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestTaskType(t *testing.T) {
	assert.Equal(t, "RETRIEVAL_DOCUMENT", TaskTypeDocument.String())
	assert.Equal(t, "RETRIEVAL_QUERY", TaskTypeQuery.String())
	assert.Equal(t, "UNSPECIFIED", TaskType(0).String())
	assert.True(t, TaskTypeDocument.Valid())
	assert.True(t, TaskTypeQuery.Valid())
	assert.False(t, TaskType(9).Valid())
}
