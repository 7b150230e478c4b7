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

// Package metrics exposes Prometheus instrumentation for training, querying
// and the HTTP surface.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/poiesic/ragbot/ai"
	"github.com/poiesic/ragbot/core"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ragbot"

// Query outcomes.
const (
	OutcomeContext   = "context"
	OutcomeNoContext = "no_context"
	OutcomeError     = "error"
)

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	embeddingRequests *prometheus.CounterVec
	embeddingDuration *prometheus.HistogramVec
	embeddingRetries  prometheus.Counter
	embeddingCache    *prometheus.CounterVec
	chunksTotal       *prometheus.CounterVec
	queriesTotal      *prometheus.CounterVec
	matchScore        prometheus.Histogram

	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		embeddingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		}, []string{"task", "status"}),

		embeddingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds, retries included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"task"}),

		embeddingRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_retries_total",
			Help:      "Embedding attempts repeated after rate limiting",
		}),

		embeddingCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		}, []string{"result"}), // "hit" / "miss"

		chunksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_chunks_total",
			Help:      "Chunks processed by training runs",
		}, []string{"result"}), // "stored" / "skipped"

		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Answered queries by outcome",
		}, []string{"outcome"}),

		matchScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Cosine similarity of the best match per query",
			Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "path", "status"}),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(
		m.embeddingRequests, m.embeddingDuration,
		m.embeddingRetries, m.embeddingCache,
		m.chunksTotal, m.queriesTotal, m.matchScore,
		m.httpRequestDuration, m.httpRequestsTotal,
	)

	return m
}

// RetryHook counts repeated embedding attempts. Pass it to ai.WithRetryHook.
func (m *Metrics) RetryHook() func(attempt int, delay time.Duration, err error) {
	return func(int, time.Duration, error) {
		if m == nil {
			return
		}
		m.embeddingRetries.Inc()
	}
}

// CacheHook counts cache lookups. Pass it to ai.WithLookupHook.
func (m *Metrics) CacheHook() func(hit bool) {
	return func(hit bool) {
		if m == nil {
			return
		}
		result := "miss"
		if hit {
			result = "hit"
		}
		m.embeddingCache.WithLabelValues(result).Inc()
	}
}

// ObserveTraining records the outcome of a training run.
func (m *Metrics) ObserveTraining(stored, skipped int) {
	if m == nil {
		return
	}
	m.chunksTotal.WithLabelValues("stored").Add(float64(stored))
	m.chunksTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveQuery records the outcome of a query. match may be nil.
func (m *Metrics) ObserveQuery(match *core.Match, usedContext bool, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.queriesTotal.WithLabelValues(OutcomeError).Inc()
		return
	case usedContext:
		m.queriesTotal.WithLabelValues(OutcomeContext).Inc()
	default:
		m.queriesTotal.WithLabelValues(OutcomeNoContext).Inc()
	}
	if match != nil {
		m.matchScore.Observe(float64(match.Score))
	}
}

// InstrumentEmbedder wraps inner so every call is counted and timed.
func (m *Metrics) InstrumentEmbedder(inner ai.Embedder) ai.Embedder {
	if m == nil {
		return inner
	}
	return &instrumentedEmbedder{inner: inner, metrics: m}
}

type instrumentedEmbedder struct {
	inner   ai.Embedder
	metrics *Metrics
}

var _ ai.Embedder = (*instrumentedEmbedder)(nil)

func (e *instrumentedEmbedder) EmbedText(ctx context.Context, text string, task ai.TaskType) ([]float32, error) {
	start := time.Now()
	vector, err := e.inner.EmbedText(ctx, text, task)
	e.metrics.embeddingDuration.WithLabelValues(task.String()).Observe(time.Since(start).Seconds())
	e.metrics.embeddingRequests.WithLabelValues(task.String(), embeddingStatus(err)).Inc()
	return vector, err
}

func embeddingStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, core.ErrEmbeddingRateLimited):
		return "rate_limited"
	default:
		return "failed"
	}
}
