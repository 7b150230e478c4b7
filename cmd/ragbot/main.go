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


package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/ragbot"
	"github.com/poiesic/ragbot/config"
	"github.com/poiesic/ragbot/core"
	"github.com/poiesic/ragbot/ingestion"
	"github.com/poiesic/ragbot/metrics"
	"github.com/poiesic/ragbot/search"
	"github.com/poiesic/ragbot/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "ragbot",
		Usage:     "Answer questions about a website or document",
		Reader:    in,
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"RAGBOT_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Dotenv files to load before reading the config",
				Value: cli.NewStringSlice(".env"),
			},
			&cli.StringFlag{
				Name:    "store",
				Aliases: []string{"s"},
				Usage:   "Path to the JSON vector store (overrides config)",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Directory for the embedding cache (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "train",
				Usage:  "Replace the vector store with embeddings of a web page or file",
				Action: trainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "url",
						Aliases: []string{"u"},
						Usage:   "Web page to train on",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Text, markdown or PDF file to train on",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Words per chunk (overrides config)",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Embed the stored passages again with the configured model",
				Action: reembedCommand,
			},
			{
				Name:  "cache",
				Usage: "Inspect or clear the embedding cache",
				Subcommands: []*cli.Command{
					{
						Name:   "stats",
						Usage:  "Print the number of cached embeddings",
						Action: cacheStatsCommand,
					},
					{
						Name:   "clear",
						Usage:  "Drop every cached embedding",
						Action: cacheClearCommand,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the trained store",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "show-prompt",
						Usage: "Print the prompt sent to the model",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactive menu to train and ask questions",
				Action: chatCommand,
			},
			{
				Name:   "serve",
				Usage:  "Serve the bot over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address (overrides config)",
					},
				},
			},
		},
	}
}

// loadConfig reads the env files and config, then applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	config.LoadEnv(c.StringSlice("env-file")...)

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("store") {
		cfg.Store.Path = c.String("store")
	}
	if c.IsSet("cache") {
		cfg.Cache.Path = c.String("cache")
	}
	if c.IsSet("chunk-size") {
		cfg.ChunkSize = c.Int("chunk-size")
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func openBot(c *cli.Context, opts ...ragbot.BotOption) (*ragbot.Bot, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]ragbot.BotOption{
		ragbot.WithConfig(cfg),
		ragbot.WithLogger(slog.Default()),
	}, opts...)
	bot, err := ragbot.NewBot(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return bot, cfg, nil
}

func trainCommand(c *cli.Context) error {
	url := strings.TrimSpace(c.String("url"))
	file := strings.TrimSpace(c.String("file"))
	if (url == "") == (file == "") {
		return errors.New("exactly one of --url or --file is required")
	}

	bot, _, err := openBot(c, ragbot.WithProgress(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var report *ingestion.Report
	if url != "" {
		report, err = bot.TrainURL(ctx, url)
	} else {
		report, err = bot.TrainFile(ctx, file)
	}
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	printReport(c.App.Writer, report, bot.StoreLocation())
	return nil
}

func reembedCommand(c *cli.Context) error {
	bot, _, err := openBot(c, ragbot.WithProgress(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := bot.Reembed(ctx)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	printReport(c.App.Writer, report, bot.StoreLocation())
	return nil
}

// openCacheBot opens a bot for cache maintenance, failing early when no
// cache directory is configured.
func openCacheBot(c *cli.Context) (*ragbot.Bot, *config.Config, error) {
	bot, cfg, err := openBot(c)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Cache.Path == "" {
		bot.Close()
		return nil, nil, errors.New("no embedding cache configured, set cache.path or --cache")
	}
	return bot, cfg, nil
}

func cacheStatsCommand(c *cli.Context) error {
	bot, cfg, err := openCacheBot(c)
	if err != nil {
		return err
	}
	defer bot.Close()

	n, err := bot.CacheLen()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%d cached embeddings in %s\n", n, cfg.Cache.Path)
	return nil
}

func cacheClearCommand(c *cli.Context) error {
	bot, cfg, err := openCacheBot(c)
	if err != nil {
		return err
	}
	defer bot.Close()

	if err := bot.ClearCache(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Cleared embedding cache in %s\n", cfg.Cache.Path)
	return nil
}

func askCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("a question is required")
	}

	bot, _, err := openBot(c)
	if err != nil {
		return err
	}
	defer bot.Close()

	answer, err := bot.Ask(c.Context, query)
	if err != nil {
		return errors.New(describeAskError(err))
	}
	if c.Bool("show-prompt") {
		fmt.Fprintf(c.App.Writer, "Prompt:\n%s\n\n", answer.Prompt)
	}
	printAnswer(c.App.Writer, answer, bot.Threshold())
	return nil
}

func chatCommand(c *cli.Context) error {
	bot, _, err := openBot(c, ragbot.WithProgress(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runChat(ctx, bot, c.App.Reader, c.App.Writer)
}

func serveCommand(c *cli.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	bot, cfg, err := openBot(c, ragbot.WithMetrics(m))
	if err != nil {
		return err
	}
	defer bot.Close()

	addr := cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	srv := server.New(bot,
		server.WithLogger(slog.Default().With("component", "server")),
		server.WithMetrics(m, reg),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("serving", "addr", addr, "store", bot.StoreLocation(), "threshold", bot.Threshold())
	return srv.Run(ctx, addr)
}

func printReport(w io.Writer, report *ingestion.Report, location string) {
	fmt.Fprintf(w, "Split into %d chunks.\n", len(report.Results))
	if report.Skipped > 0 {
		fmt.Fprintf(w, "Skipped %d chunks:\n", report.Skipped)
		for _, f := range report.Failures() {
			fmt.Fprintf(w, "  chunk %d: %v\n", f.Index, f.Err)
		}
	}
	if location != "" {
		fmt.Fprintf(w, "Training finished. %d records saved to %s\n", report.Records, location)
	} else {
		fmt.Fprintf(w, "Training finished. %d records saved.\n", report.Records)
	}
}

func printAnswer(w io.Writer, answer *search.Answer, threshold float32) {
	if answer.UsedContext {
		fmt.Fprintf(w, "Found relevant information (similarity: %.2f).\n", answer.Match.Score)
	} else {
		fmt.Fprintf(w, "No passage scored above %.2f; answering without context.\n", threshold)
	}
	fmt.Fprintf(w, "\nAnswer:\n%s\n", answer.Text)
}

// describeAskError turns a query failure into a message for the terminal.
func describeAskError(err error) string {
	switch {
	case errors.Is(err, core.ErrStoreNotFound):
		return "no training data yet, train from a website or file first"
	case errors.Is(err, core.ErrStoreEmpty):
		return "training data is empty, train from a website or file first"
	case errors.Is(err, core.ErrStoreCorrupt):
		return fmt.Sprintf("training data is unreadable, train again: %v", err)
	case errors.Is(err, search.ErrEmbeddingUnavailable):
		return fmt.Sprintf("could not embed the question: %v", err)
	case errors.Is(err, core.ErrCompletionFailed):
		return fmt.Sprintf("could not generate an answer, check the question and your API key: %v", err)
	default:
		return err.Error()
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
