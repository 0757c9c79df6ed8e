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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/ai"
	"github.com/poiesic/icdmap/ai/openai"
	"github.com/poiesic/icdmap/embedding"
	"github.com/poiesic/icdmap/icd10"
	"github.com/poiesic/icdmap/indexing"
	"github.com/poiesic/icdmap/search"
	"github.com/poiesic/icdmap/tui"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "icdmap",
		Usage: "ICD-10-CM code suggestions for free text diagnoses",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Build the code index from a CMS order file or the builtin catalog",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Path to a CMS order file (icd10cm_order_*.txt); omit for the builtin catalog",
					},
					&cli.IntFlag{
						Name:  "dimensions",
						Usage: "Hierarchy embedding vector length",
						Value: embedding.DefaultDimensions,
					},
					&cli.IntFlag{
						Name:  "walks",
						Usage: "Random walks started from each hierarchy node",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "walk-length",
						Usage: "Nodes per random walk",
						Value: 40,
					},
					&cli.IntFlag{
						Name:  "window",
						Usage: "Skip-gram context window",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "epochs",
						Usage: "Training passes over the walk corpus",
						Value: 15,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker count for training and vector writes (0 uses the defaults)",
					},
					&cli.Uint64Flag{
						Name:  "seed",
						Usage: "Seed for walk generation and weight initialization",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: indexing.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: indexing.DefaultReportInterval,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Suggest codes for a diagnosis",
				ArgsUsage: "<diagnosis text>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"t"},
						Usage:   "Number of suggestions to return",
						Value:   search.DefaultTopK,
					},
					&cli.StringFlag{
						Name:  "semantic-host",
						Usage: "Embedding service host URL for the semantic rerank stage",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "semantic-model",
						Usage: "Embedding model name; setting it enables the semantic rerank stage",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				},
			},
			{
				Name:      "related",
				Usage:     "Show classification neighbors of a code",
				ArgsUsage: "<code>",
				Action:    relatedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of neighbors to return",
						Value: search.DefaultRelatedLimit,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				},
			},
			{
				Name:   "info",
				Usage:  "Show index metadata",
				Action: infoCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "browse",
				Usage:  "Interactively search the index",
				Action: browseCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"t"},
						Usage:   "Number of suggestions per query",
						Value:   search.DefaultTopK,
					},
				},
			},
		},
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	source := icd10.SourceBuiltin
	var entries []icd10.Entry
	if path := c.String("source"); path != "" {
		loaded, skipped, err := icd10.LoadOrderFile(path)
		if err != nil {
			return fmt.Errorf("failed to load order file: %w", err)
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "Skipped %d unusable order file lines\n", skipped)
		}
		entries = loaded
		source = path
	} else {
		entries = icd10.BuiltinCatalog()
	}

	trainerOpts := []embedding.Option{
		embedding.WithDimensions(c.Int("dimensions")),
		embedding.WithWalks(c.Int("walks"), c.Int("walk-length")),
		embedding.WithWindow(c.Int("window")),
		embedding.WithEpochs(c.Int("epochs")),
		embedding.WithSeed(c.Uint64("seed")),
	}
	if c.Int("workers") > 0 {
		trainerOpts = append(trainerOpts, embedding.WithWorkers(c.Int("workers")))
	}
	trainer, err := embedding.NewTrainer(trainerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create trainer: %w", err)
	}

	buildConfig := indexing.DefaultConfig()
	buildConfig.BatchSize = c.Int("batch-size")
	buildConfig.ReportInterval = c.Int("report-interval")
	buildConfig.Workers = c.Int("workers")

	idx, err := icdmap.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer idx.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Source: %s (%d entries)\n", source, len(entries))
	fmt.Fprintln(os.Stderr)

	if _, err := idx.Build(ctx, source, entries, trainer, buildConfig, os.Stderr); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a diagnosis to search for is required")
	}

	opts, err := semanticOptions(c)
	if err != nil {
		return err
	}

	idx, err := icdmap.Open(dbPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer idx.Close()

	matches, err := idx.Search(ctx, query, c.Int("top"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.Bool("json") {
		return printJSON(os.Stdout, matches)
	}
	printMatches(os.Stdout, matches)
	return nil
}

func relatedCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("a code to look up is required")
	}

	idx, err := icdmap.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer idx.Close()

	matches, err := idx.Related(ctx, code, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("related lookup failed: %w", err)
	}

	if c.Bool("json") {
		return printJSON(os.Stdout, matches)
	}
	printMatches(os.Stdout, matches)
	return nil
}

func infoCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	idx, err := icdmap.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer idx.Close()

	count, err := idx.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count codes: %w", err)
	}
	info, err := idx.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to load index info: %w", err)
	}
	if info == nil {
		fmt.Printf("No index built (%d codes stored)\n", count)
		return nil
	}

	fmt.Printf("Source: %s\n", info.Source)
	fmt.Printf("Codes: %d\n", count)
	fmt.Printf("Dimensions: %d\n", info.Dimensions)
	fmt.Printf("Built: %s\n", info.BuiltAt.Format(time.RFC3339))
	fmt.Printf("Embedded: %s\n", info.EmbeddedAt.Format(time.RFC3339))
	return nil
}

func browseCommand(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	idx, err := icdmap.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer idx.Close()

	return tui.Run(idx, c.Int("top"))
}

// semanticOptions wires an embedder when a semantic model is named.
func semanticOptions(c *cli.Context) ([]icdmap.Option, error) {
	model := c.String("semantic-model")
	if model == "" {
		return nil, nil
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("semantic-host")),
		ai.WithModel(model),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid semantic configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return []icdmap.Option{icdmap.WithEmbedder(embedder)}, nil
}

type matchJSON struct {
	Code          string  `json:"code"`
	Description   string  `json:"description"`
	Billable      bool    `json:"billable"`
	Chapter       int     `json:"chapter"`
	Score         float64 `json:"score"`
	LexicalScore  float64 `json:"lexical_score"`
	Coherence     float64 `json:"coherence"`
	SemanticScore float64 `json:"semantic_score,omitempty"`
	Justification string  `json:"justification"`
}

func printJSON(w io.Writer, matches []*search.Match) error {
	out := make([]matchJSON, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchJSON{
			Code:          m.Code,
			Description:   m.Description,
			Billable:      m.Billable,
			Chapter:       m.Chapter,
			Score:         m.Score,
			LexicalScore:  m.LexicalScore,
			Coherence:     m.Coherence,
			SemanticScore: m.SemanticScore,
			Justification: m.Justification,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printMatches(w io.Writer, matches []*search.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No suggestions")
		return
	}
	for i, m := range matches {
		billable := ""
		if m.Billable {
			billable = " (billable)"
		}
		fmt.Fprintf(w, "%d. %-8s %.3f  %s%s\n", i+1, m.Code, m.Score, m.Description, billable)
		if m.Justification != "" {
			fmt.Fprintf(w, "   %s\n", m.Justification)
		}
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
