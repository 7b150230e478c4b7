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

// Package server exposes a Bot over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/ragbot/core"
	"github.com/poiesic/ragbot/ingestion"
	"github.com/poiesic/ragbot/metrics"
	"github.com/poiesic/ragbot/search"
	"github.com/poiesic/ragbot/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRequestBytes bounds request bodies, which may carry a whole document.
const maxRequestBytes = 20 << 20

// Bot is the part of ragbot.Bot the server needs.
type Bot interface {
	Train(ctx context.Context, text string) (*ingestion.Report, error)
	TrainURL(ctx context.Context, url string) (*ingestion.Report, error)
	Ask(ctx context.Context, query string) (*search.Answer, error)
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest           = "bad_request"
	CodeContentUnavailable   = "content_unavailable"
	CodeStoreNotFound        = "store_not_found"
	CodeStoreEmpty           = "store_empty"
	CodeStoreCorrupt         = "store_corrupt"
	CodeRateLimited          = "rate_limited"
	CodeEmbeddingUnavailable = "embedding_unavailable"
	CodeEmbeddingFailed      = "embedding_failed"
	CodeCompletionFailed     = "completion_failed"
	CodeUpstreamFailed       = "upstream_failed"
	CodeInternal             = "internal_error"
)

// TrainRequest is the body of POST /train. Exactly one field must be set.
type TrainRequest struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ChunkFailure describes a skipped chunk.
type ChunkFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// TrainResponse is the body returned by POST /train.
type TrainResponse struct {
	Records  int            `json:"records"`
	Skipped  int            `json:"skipped"`
	Failures []ChunkFailure `json:"failures,omitempty"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Query string `json:"query"`
}

// MatchResponse is the best passage found for a query.
type MatchResponse struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	Answer      string         `json:"answer"`
	UsedContext bool           `json:"used_context"`
	Match       *MatchResponse `json:"match,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server routes HTTP requests to a Bot.
type Server struct {
	bot           Bot
	metrics       *metrics.Metrics
	gatherer      prometheus.Gatherer
	logger        *slog.Logger
	errorHandlers []errorHandler

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics instruments requests and serves gatherer on GET /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithTimeouts sets the HTTP read and write timeouts and the grace period
// allowed for in-flight requests on shutdown. Zero values keep the defaults.
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}

// New creates a server for bot.
func New(bot Bot, opts ...Option) *Server {
	s := &Server{
		bot:             bot,
		logger:          slog.Default().With("component", "server"),
		readTimeout:     10 * time.Second,
		writeTimeout:    2 * time.Minute,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(core.ErrContentUnavailable, http.StatusBadRequest, CodeContentUnavailable),
		sentinelHandler(search.ErrEmptyQuery, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(source.ErrInvalidURL, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(core.ErrStoreNotFound, http.StatusNotFound, CodeStoreNotFound),
		sentinelHandler(core.ErrStoreEmpty, http.StatusConflict, CodeStoreEmpty),
		sentinelHandler(core.ErrStoreCorrupt, http.StatusInternalServerError, CodeStoreCorrupt),
		sentinelHandler(search.ErrEmbeddingUnavailable, http.StatusServiceUnavailable, CodeEmbeddingUnavailable),
		sentinelHandler(core.ErrEmbeddingRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(core.ErrEmbeddingFailed, http.StatusBadGateway, CodeEmbeddingFailed),
		sentinelHandler(core.ErrCompletionFailed, http.StatusBadGateway, CodeCompletionFailed),
		sentinelHandler(source.ErrUnexpectedStatus, http.StatusBadGateway, CodeUpstreamFailed),
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(s.metrics.Middleware())

	r.Get("/healthz", s.health)
	r.Post("/train", s.train)
	r.Post("/ask", s.ask)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Run serves on addr until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.readTimeout,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) train(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	hasText := strings.TrimSpace(req.Text) != ""
	hasURL := strings.TrimSpace(req.URL) != ""
	if hasText == hasURL {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "exactly one of text or url is required")
		return
	}

	var (
		report *ingestion.Report
		err    error
	)
	if hasURL {
		report, err = s.bot.TrainURL(r.Context(), strings.TrimSpace(req.URL))
	} else {
		report, err = s.bot.Train(r.Context(), req.Text)
	}
	if err != nil {
		s.handleError(w, err)
		return
	}

	resp := TrainResponse{Records: report.Records, Skipped: report.Skipped}
	for _, f := range report.Failures() {
		resp.Failures = append(resp.Failures, ChunkFailure{Index: f.Index, Error: f.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	answer, err := s.bot.Ask(r.Context(), req.Query)
	if err != nil {
		s.handleError(w, err)
		return
	}

	resp := AskResponse{Answer: answer.Text, UsedContext: answer.UsedContext}
	if answer.Match != nil {
		resp.Match = &MatchResponse{Text: answer.Match.Text, Score: answer.Match.Score}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	s.logger.Warn("request failed", "err", err)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
