// Copyright 2025 Tessella Systems
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
	"path/filepath"
	"strings"
	"time"

	"github.com/tessella/docvec"
	"github.com/tessella/docvec/ai"
	"github.com/tessella/docvec/core"
	"github.com/tessella/docvec/elements"
	"github.com/tessella/docvec/ingest"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docvec",
		Usage: "Chunk, embed, and search documents in a vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				EnvVars: []string{"DOCVEC_DB"},
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./docvec_db",
			},
			&cli.StringFlag{
				Name:    "qdrant",
				EnvVars: []string{"DOCVEC_QDRANT"},
				Usage:   "Qdrant gRPC address; when set, vectors go to Qdrant instead of BadgerDB",
			},
			&cli.StringFlag{
				Name:    "qdrant-collection",
				EnvVars: []string{"DOCVEC_QDRANT_COLLECTION"},
				Usage:   "Qdrant collection name",
				Value:   "docvec",
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				EnvVars: []string{"DOCVEC_EMBEDDING_HOST"},
				Usage:   "Embedding service host URL",
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				EnvVars: []string{"DOCVEC_EMBEDDING_MODEL"},
				Usage:   "Embedding model name",
				Value:   "embeddinggemma",
			},
			&cli.StringFlag{
				Name:    "api-key",
				EnvVars: []string{"DOCVEC_API_KEY"},
				Usage:   "API key for the embedding service",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Chunk and embed markdown files into the vector store",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Delete any existing vectors for each document and re-ingest",
					},
					&cli.BoolFlag{
						Name:  "transcript",
						Usage: "Treat inputs as plain-text transcripts instead of markdown",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Title metadata for transcript ingestion (defaults to the file name)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed and upsert per batch",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding or upsert calls",
						Value: ingest.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: ingest.DefaultRetryBaseDelay,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Timeout for each embedding or upsert attempt",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a document's chunks by semantic similarity",
				ArgsUsage: "SOURCE QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   5,
					},
				},
			},
			{
				Name:      "list",
				Usage:     "List a document's stored chunks in original order",
				ArgsUsage: "SOURCE",
				Action:    listCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "text",
						Usage: "Print full chunk text instead of a summary line",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openStore(c *cli.Context) (*docvec.Store, error) {
	opts := []docvec.StoreOption{
		docvec.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithAPIKey(c.String("api-key")),
		)),
	}
	if addr := c.String("qdrant"); addr != "" {
		opts = append(opts, docvec.WithQdrant(addr, c.String("qdrant-collection")))
	}

	store, err := docvec.NewStore(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one input file is required")
	}
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("max-retries") <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline, err := store.NewIngestPipeline(
		ingest.WithBatchSize(c.Int("batch-size")),
		ingest.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingest.WithCallTimeout(c.Duration("timeout")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	opts := &ingest.IngestOptions{Force: c.Bool("force")}

	if c.Bool("transcript") {
		return ingestTranscripts(ctx, c, pipeline, opts)
	}
	return ingestMarkdown(ctx, c, pipeline, opts)
}

func ingestMarkdown(ctx context.Context, c *cli.Context, pipeline *ingest.Pipeline, opts *ingest.IngestOptions) error {
	docs := make([]ingest.Document, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		contents, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, ingest.Document{
			Source:   path,
			Elements: elements.NewMarkdownSource(string(contents)),
		})
	}

	summary := pipeline.IngestAll(ctx, docs, opts)
	return reportSummary(summary)
}

func ingestTranscripts(ctx context.Context, c *cli.Context, pipeline *ingest.Pipeline, opts *ingest.IngestOptions) error {
	summary := ingest.Summary{}
	for _, path := range c.Args().Slice() {
		contents, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		title := c.String("title")
		if title == "" {
			title = filepath.Base(path)
		}
		outcome := pipeline.IngestTranscript(ctx, path, title, string(contents), opts)
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	return reportSummary(summary)
}

func reportSummary(summary ingest.Summary) error {
	for _, outcome := range summary.Outcomes {
		switch outcome.Status {
		case ingest.StatusSucceeded:
			fmt.Fprintf(os.Stderr, "%s: %d chunks ingested\n", outcome.Source, outcome.ChunksProcessed)
		case ingest.StatusSkipped:
			fmt.Fprintf(os.Stderr, "%s: already ingested, skipped (use --force to re-ingest)\n", outcome.Source)
		case ingest.StatusPartialFailure:
			fmt.Fprintf(os.Stderr, "%s: partial failure after %d chunks: %v\n", outcome.Source, outcome.ChunksProcessed, outcome.Err)
		default:
			fmt.Fprintf(os.Stderr, "%s: failed: %v\n", outcome.Source, outcome.Err)
		}
	}

	if failed := summary.Failed() + summary.Partial(); failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(summary.Outcomes))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: docvec search SOURCE QUERY...")
	}
	source := c.Args().First()
	query := strings.Join(c.Args().Slice()[1:], " ")

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	searcher, err := store.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	matches, err := searcher.Search(context.Background(), source, query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(matches))
	for i, hit := range matches {
		fmt.Printf("%d: [%0.3f] %s\n", i, hit.Score, hit.Metadata.Hierarchy)
		fmt.Printf("   %s\n", firstLine(hit.Metadata.Text))
	}
	return nil
}

func listCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: docvec list SOURCE")
	}
	source := c.Args().First()

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	searcher, err := store.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	chunks, err := searcher.ListChunks(context.Background(), source)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	fmt.Printf("%s: %d chunks (namespace %s)\n", source, len(chunks), core.NamespaceFromSource(source))
	for _, chunk := range chunks {
		if c.Bool("text") {
			fmt.Printf("--- %d: %s (%d tokens)\n%s\n", chunk.SequenceIndex, chunk.Hierarchy, chunk.TokenCount, chunk.Text)
		} else {
			fmt.Printf("%4d: %s (%d tokens) %s\n", chunk.SequenceIndex, chunk.Hierarchy, chunk.TokenCount, firstLine(chunk.Text))
		}
	}
	return nil
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const max = 120
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}

func setupLogger(c *cli.Context) error {
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
