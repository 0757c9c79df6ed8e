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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/ai"
	"github.com/poiesic/icdmap/ai/openai"
	"github.com/poiesic/icdmap/config"
	"github.com/poiesic/icdmap/search"
	"github.com/poiesic/icdmap/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "icdmapd",
		Usage: "Serve ICD-10-CM code suggestions over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file; omit to search ., ./config and /etc/icdmap",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Override the configured database path",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Action: serveCommand,
	}
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	// The flag wins over the config file when both name a level.
	if !c.IsSet("log-level") {
		level, err := parseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		configureLogger(level)
	}

	opts := []icdmap.Option{
		icdmap.WithSearchOptions(
			search.WithCandidateLimit(cfg.Search.CandidateLimit),
			search.WithCoherenceWeight(cfg.Search.CoherenceWeight),
			search.WithMinScore(cfg.Search.MinScore),
		),
	}
	if cfg.Semantic.Enabled {
		aiConfig := ai.NewConfig(
			ai.WithHost(cfg.Semantic.Host),
			ai.WithModel(cfg.Semantic.Model),
		)
		if err := aiConfig.Validate(); err != nil {
			return fmt.Errorf("invalid semantic configuration: %w", err)
		}
		embedder, err := openai.NewEmbedder(aiConfig)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		opts = append(opts, icdmap.WithEmbedder(embedder))
	}

	idx, err := icdmap.Open(cfg.Database.Path, opts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer idx.Close()

	count, err := idx.Count(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count codes: %w", err)
	}
	slog.Info("index opened", "path", cfg.Database.Path, "codes", count)
	if count == 0 {
		slog.Warn("index is empty; build it with icdmap index")
	}

	srv, err := server.New(cfg, idx, slog.Default())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	configureLogger(level)
	return nil
}

func parseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
}

func configureLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
