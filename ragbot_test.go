package ragbot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/ai/mock"
	"github.com/poiesic/ragbot/config"
	"github.com/poiesic/ragbot/core"
	"github.com/poiesic/ragbot/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisProvider embeds text containing "a" as [1,0] and everything else as [0,1].
func axisProvider() *mock.MockProvider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string, task ai.TaskType) ([]float32, error) {
		if strings.Contains(text, "a") {
			return []float32{1, 0}, nil
		}
		return []float32{0, 1}, nil
	}
	return mock.NewMockProviderWithServices(embedder, mock.NewMockCompleter())
}

func newTestBot(t *testing.T, provider ai.AIProvider, opts ...BotOption) *Bot {
	t.Helper()
	opts = append([]BotOption{
		WithProvider(provider),
		WithStorePath(filepath.Join(t.TempDir(), "store.json")),
	}, opts...)
	bot, err := NewBot(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { bot.Close() })
	return bot
}

func TestNewBot(t *testing.T) {
	t.Run("requires an API key without a provider", func(t *testing.T) {
		bot, err := NewBot(WithStorePath(filepath.Join(t.TempDir(), "store.json")))
		assert.ErrorIs(t, err, ai.ErrInvalidConfig)
		assert.Nil(t, bot)
	})

	t.Run("builds an OpenAI provider from config", func(t *testing.T) {
		bot, err := NewBot(
			WithAIConfig(ai.NewConfig(ai.WithAPIKey("test-key"))),
			WithStorePath(filepath.Join(t.TempDir(), "store.json")),
		)
		require.NoError(t, err)
		assert.NoError(t, bot.Close())
	})

	t.Run("non-positive chunk size uses the default", func(t *testing.T) {
		bot, err := NewBot(
			WithProvider(mock.NewMockProvider()),
			WithStorePath(filepath.Join(t.TempDir(), "store.json")),
			WithChunkSize(-1),
			WithThreshold(0.5),
		)
		require.NoError(t, err)
		defer bot.Close()
		assert.Equal(t, float32(0.5), bot.Threshold())
	})

	t.Run("rejects an invalid threshold", func(t *testing.T) {
		provider := mock.NewMockProvider().(*mock.MockProvider)
		_, err := NewBot(WithProvider(provider), WithThreshold(2))
		assert.Error(t, err)
		assert.True(t, provider.Closed(), "provider is released on failure")
	})

	t.Run("rejects zero retries", func(t *testing.T) {
		_, err := NewBot(WithProvider(mock.NewMockProvider()), WithAIConfig(ai.NewConfig(ai.WithRetry(0, 0))))
		assert.ErrorIs(t, err, ai.ErrInvalidMaxAttempts)
	})

	t.Run("store location", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.json")
		bot, err := NewBot(WithProvider(mock.NewMockProvider()), WithStorePath(path))
		require.NoError(t, err)
		defer bot.Close()
		assert.Equal(t, path, bot.StoreLocation())
	})
}

func TestBot_TrainAndAsk(t *testing.T) {
	ctx := context.Background()
	provider := axisProvider()
	bot := newTestBot(t, provider, WithChunkSize(2))

	report, err := bot.Train(ctx, "a b c d")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, 0, report.Skipped)

	answer, err := bot.Ask(ctx, "tell me about a")
	require.NoError(t, err)
	require.NotNil(t, answer.Match)
	assert.Equal(t, "a b", answer.Match.Text)
	assert.InDelta(t, 1.0, answer.Match.Score, 1e-6)
	assert.True(t, answer.UsedContext)
	assert.Equal(t, "answer: "+answer.Prompt, answer.Text)

	retrieval, err := bot.Lookup(ctx, "tell me about a")
	require.NoError(t, err)
	assert.Equal(t, answer.Prompt, retrieval.Prompt)
}

func TestBot_Reembed(t *testing.T) {
	ctx := context.Background()
	provider := axisProvider()
	bot := newTestBot(t, provider, WithChunkSize(2))

	_, err := bot.Reembed(ctx)
	assert.ErrorIs(t, err, core.ErrStoreNotFound)

	_, err = bot.Train(ctx, "a b c d")
	require.NoError(t, err)

	report, err := bot.Reembed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, []string{"a b", "c d", "a b", "c d"}, provider.GetMockEmbedder().Texts())
}

func TestBot_AskBeforeTraining(t *testing.T) {
	provider := axisProvider()
	bot := newTestBot(t, provider)

	_, err := bot.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, core.ErrStoreNotFound)
	assert.Equal(t, 0, provider.GetMockCompleter().CallCount())
}

func TestBot_RetriesRateLimitedEmbeddings(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string, task ai.TaskType) ([]float32, error) {
		if embedder.CallCount() <= 2 {
			return nil, fmt.Errorf("%w: 429", core.ErrEmbeddingRateLimited)
		}
		return []float32{1, 0}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockCompleter())

	var delays []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	bot := newTestBot(t, provider, WithRetrySleep(sleep))

	report, err := bot.Train(context.Background(), "one chunk")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)
	assert.Equal(t, 3, embedder.CallCount())
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second}, delays)
}

func TestBot_RateLimitExhaustedSkipsChunk(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string, task ai.TaskType) ([]float32, error) {
		return nil, fmt.Errorf("%w: 429", core.ErrEmbeddingRateLimited)
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockCompleter())
	noSleep := func(ctx context.Context, d time.Duration) error { return nil }
	bot := newTestBot(t, provider, WithRetrySleep(noSleep))

	report, err := bot.Train(context.Background(), "one chunk")
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Equal(t, 1, report.Skipped)
	assert.ErrorIs(t, report.Results[0].Err, core.ErrEmbeddingRateLimited)
	assert.Equal(t, 5, embedder.CallCount())
}

func TestBot_Cache(t *testing.T) {
	ctx := context.Background()
	provider := axisProvider()
	reg := prometheus.NewRegistry()
	bot := newTestBot(t, provider,
		WithChunkSize(2),
		WithCache(filepath.Join(t.TempDir(), "cache"), time.Hour),
		WithMetrics(metrics.New(reg)),
	)

	_, err := bot.Train(ctx, "a b c d")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.GetMockEmbedder().CallCount())

	report, err := bot.Train(ctx, "a b c d")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, 2, provider.GetMockEmbedder().CallCount(), "second run is served from the cache")

	expected := `
# HELP ragbot_embedding_cache_total Embedding cache hits and misses
# TYPE ragbot_embedding_cache_total counter
ragbot_embedding_cache_total{result="hit"} 2
ragbot_embedding_cache_total{result="miss"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ragbot_embedding_cache_total"))
}

func TestBot_CacheMaintenance(t *testing.T) {
	ctx := context.Background()

	t.Run("len and clear", func(t *testing.T) {
		provider := axisProvider()
		bot := newTestBot(t, provider, WithChunkSize(2), WithCache(filepath.Join(t.TempDir(), "cache"), 0))

		n, err := bot.CacheLen()
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		_, err = bot.Train(ctx, "a b c d")
		require.NoError(t, err)
		n, err = bot.CacheLen()
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, bot.ClearCache())
		n, err = bot.CacheLen()
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		_, err = bot.Train(ctx, "a b c d")
		require.NoError(t, err)
		assert.Equal(t, 4, provider.GetMockEmbedder().CallCount(), "cleared entries are embedded again")
	})

	t.Run("disabled", func(t *testing.T) {
		bot := newTestBot(t, axisProvider())

		_, err := bot.CacheLen()
		assert.ErrorIs(t, err, ErrCacheDisabled)
		assert.ErrorIs(t, bot.ClearCache(), ErrCacheDisabled)
	})
}

func TestBot_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	bot := newTestBot(t, axisProvider(), WithChunkSize(2), WithMetrics(metrics.New(reg)))

	_, err := bot.Ask(ctx, "q")
	require.Error(t, err)

	_, err = bot.Train(ctx, "a b c d")
	require.NoError(t, err)
	_, err = bot.Ask(ctx, "a")
	require.NoError(t, err)

	expected := `
# HELP ragbot_queries_total Answered queries by outcome
# TYPE ragbot_queries_total counter
ragbot_queries_total{outcome="context"} 1
ragbot_queries_total{outcome="error"} 1
# HELP ragbot_training_chunks_total Chunks processed by training runs
# TYPE ragbot_training_chunks_total counter
ragbot_training_chunks_total{result="skipped"} 0
ragbot_training_chunks_total{result="stored"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ragbot_queries_total", "ragbot_training_chunks_total"))
}

func TestBot_TrainFile(t *testing.T) {
	ctx := context.Background()
	bot := newTestBot(t, axisProvider())

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# about a\n"), 0644))

	report, err := bot.TrainFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)

	_, err = bot.TrainFile(ctx, filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBot_TrainURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><nav>menu</nav><p>all about a</p></body></html>`))
	}))
	defer server.Close()

	provider := axisProvider()
	bot := newTestBot(t, provider, WithHTTPClient(server.Client()))

	report, err := bot.TrainURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)
	assert.Equal(t, []string{"all about a"}, provider.GetMockEmbedder().Texts())
}

func TestBot_TrainEmptyContent(t *testing.T) {
	bot := newTestBot(t, axisProvider())

	_, err := bot.Train(context.Background(), "   ")
	assert.ErrorIs(t, err, core.ErrContentUnavailable)
}

func TestBot_WithConfig(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "k")
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Store.Path = filepath.Join(t.TempDir(), "configured.json")
	threshold := float32(0.25)
	cfg.Threshold = &threshold

	bot, err := NewBot(WithConfig(cfg), WithProvider(axisProvider()))
	require.NoError(t, err)
	defer bot.Close()

	assert.Equal(t, cfg.Store.Path, bot.StoreLocation())
	assert.Equal(t, float32(0.25), bot.Threshold())
}

func TestBot_Close(t *testing.T) {
	provider := axisProvider()
	bot, err := NewBot(
		WithProvider(provider),
		WithStorePath(filepath.Join(t.TempDir(), "store.json")),
		WithCache(filepath.Join(t.TempDir(), "cache"), 0),
	)
	require.NoError(t, err)

	assert.NoError(t, bot.Close())
	assert.True(t, provider.Closed())
	assert.True(t, bot.cacheBackend.IsClosed())
}
