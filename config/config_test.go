package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/chunk"
	"github.com/poiesic/ragbot/search"
	"github.com/poiesic/ragbot/storage/jsonfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ragbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvGeminiAPIKey, "")
}

func TestLoad_DefaultsFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvGeminiAPIKey, "gemini-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini-key", cfg.AI.APIKey)
	assert.Equal(t, ai.DefaultHost, cfg.AI.EmbeddingHost)
	assert.Equal(t, ai.DefaultHost, cfg.AI.CompletionHost)
	assert.Equal(t, 5, cfg.AI.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.AI.RetryDelay)
	assert.Equal(t, jsonfile.DefaultPath, cfg.Store.Path)
	assert.Equal(t, "", cfg.Cache.Path)
	assert.Equal(t, chunk.DefaultSize, cfg.ChunkSize)
	assert.Equal(t, search.DefaultThreshold, cfg.SimilarityThreshold())
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_RagbotKeyWins(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvAPIKey, "ragbot-key")
	t.Setenv(EnvGeminiAPIKey, "gemini-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ragbot-key", cfg.AI.APIKey)
}

func TestLoad_MissingAPIKeyFailsFast(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Load("")
	assert.ErrorIs(t, err, ai.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "APIKey")
	assert.Nil(t, cfg)
}

func TestLoad_File(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("TEST_RAGBOT_KEY", "file-key")

	path := writeConfig(t, `
ai:
  api_key: ${TEST_RAGBOT_KEY}
  embedding_host: http://localhost:11434/v1/
  embedding_model: nomic-embed-text
  completion_model: llama3
  max_retries: 3
  retry_delay: 500ms
store:
  path: ${TEST_RAGBOT_STORE:-data/store.json}
cache:
  path: /tmp/ragbot-cache
  ttl: 24h
chunk_size: 200
threshold: 0.5
server:
  addr: 127.0.0.1:9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.AI.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.CompletionHost, "completion host inherits embedding host")
	assert.Equal(t, "nomic-embed-text", cfg.AI.EmbeddingModel)
	assert.Equal(t, "llama3", cfg.AI.CompletionModel)
	assert.Equal(t, 3, cfg.AI.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.AI.RetryDelay)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-9, "unset fields keep defaults")
	assert.Equal(t, "data/store.json", cfg.Store.Path)
	assert.Equal(t, "/tmp/ragbot-cache", cfg.Cache.Path)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 200, cfg.ChunkSize)
	assert.Equal(t, float32(0.5), cfg.SimilarityThreshold())
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestLoad_CompletionHost(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvAPIKey, "k")

	t.Run("follows the embedding host", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "ai:\n  embedding_host: http://localhost:11434/v1/\n"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:11434/v1", cfg.AI.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.AI.CompletionHost)
	})

	t.Run("explicit host is kept", func(t *testing.T) {
		content := "ai:\n  embedding_host: http://localhost:11434/v1\n  completion_host: http://localhost:8000/v1\n"
		cfg, err := Load(writeConfig(t, content))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/v1", cfg.AI.CompletionHost)
	})

	t.Run("defaults when neither is set", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "chunk_size: 5\n"))
		require.NoError(t, err)
		assert.Equal(t, ai.DefaultHost, cfg.AI.EmbeddingHost)
		assert.Equal(t, ai.DefaultHost, cfg.AI.CompletionHost)
	})
}

func TestLoad_FileKeyFallsBackToEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvAPIKey, "env-key")

	cfg, err := Load(writeConfig(t, "chunk_size: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, 10, cfg.ChunkSize)
}

func TestLoad_ZeroThresholdIsKept(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvAPIKey, "k")

	cfg, err := Load(writeConfig(t, "threshold: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, float32(0), cfg.SimilarityThreshold())
}

func TestLoad_Errors(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvAPIKey, "k")

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "chunk_size: [1, 2\n"))
		assert.ErrorContains(t, err, "failed to parse config")
	})

	t.Run("threshold out of range", func(t *testing.T) {
		_, err := Load(writeConfig(t, "threshold: 1.5\n"))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("negative ttl", func(t *testing.T) {
		_, err := Load(writeConfig(t, "cache:\n  ttl: -1s\n"))
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RAGBOT_TEST_DOTENV=from-file\nRAGBOT_TEST_PRESET=from-file\n"), 0644))

	t.Setenv("RAGBOT_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("RAGBOT_TEST_DOTENV") })

	LoadEnv(path, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "from-file", os.Getenv("RAGBOT_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("RAGBOT_TEST_PRESET"), "existing variables win")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RAGBOT_X", "x")
	t.Setenv("RAGBOT_EMPTY", "")

	out := expandEnvVars([]byte("a: ${RAGBOT_X}\nb: ${RAGBOT_EMPTY:-fallback}\nc: ${RAGBOT_UNSET_VAR}\n"))
	assert.Equal(t, "a: x\nb: fallback\nc: \n", string(out))
}
