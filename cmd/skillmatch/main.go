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
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/skillmatch"
	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/storage"
	"github.com/poiesic/skillmatch/storage/badger"
	"github.com/poiesic/skillmatch/storage/sqlite"
	"github.com/poiesic/skillmatch/table"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "skillmatch",
		Usage: "Skill-aware search over a training program catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank programs against a free-text query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(engineFlags(),
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of programs to return",
						Value:   5,
					},
				),
			},
			{
				Name:      "details",
				Usage:     "Show programs by key",
				ArgsUsage: "KEY...",
				Action:    detailsCommand,
				Flags: append(engineFlags(),
					&cli.BoolFlag{
						Name:  "deep",
						Usage: "Include every course of the program",
					},
				),
			},
			{
				Name:      "compare",
				Usage:     "Compare the first program against the others",
				ArgsUsage: "KEY KEY...",
				Action:    compareCommand,
				Flags:     engineFlags(),
			},
			{
				Name:      "resolve",
				Usage:     "Map a query onto canonical skills",
				ArgsUsage: "QUERY...",
				Action:    resolveCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:  "context",
						Usage: "Text read for disambiguation signals instead of the query",
					},
				),
			},
			{
				Name:   "vocab",
				Usage:  "List the skill vocabulary",
				Action: vocabCommand,
				Flags:  engineFlags(),
			},
			{
				Name:   "warm-cache",
				Usage:  "Compute and persist skill embeddings",
				Action: warmCacheCommand,
				Flags:  engineFlags(),
			},
		},
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "Path to the catalog extract (CSV or TSV)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "columns",
			Usage: "YAML file mapping logical fields to column headers",
		},
		&cli.StringFlag{
			Name:  "aliases",
			Usage: "YAML file of skill aliases",
		},
		&cli.StringFlag{
			Name:  "taxonomy",
			Usage: "YAML file of skill intents",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Directory holding cached skill embeddings",
			Value: skillmatch.DefaultCacheDir,
		},
		&cli.StringFlag{
			Name:  "cache-backend",
			Usage: "Embedding cache backend (file, badger, sqlite)",
			Value: "file",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "https://api.openai.com/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "text-embedding-3-small",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "Embedding service credential; embeddings are disabled without one",
			EnvVars: []string{ai.APIKeyEnv},
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of skills to embed per request",
			Value: 100,
		},
	}
}

func openEngine(c *cli.Context, extra ...skillmatch.Option) (*skillmatch.Engine, error) {
	opts := []skillmatch.Option{
		skillmatch.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithAPIKey(c.String("api-key")),
			ai.WithBatchSize(c.Int("batch-size")),
		)),
		skillmatch.WithCacheDir(c.String("cache-dir")),
		skillmatch.WithAliasesFile(c.String("aliases")),
		skillmatch.WithTaxonomyFile(c.String("taxonomy")),
	}

	if path := c.String("columns"); path != "" {
		columns, err := table.LoadColumnMap(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load column map: %w", err)
		}
		opts = append(opts, skillmatch.WithColumnMap(columns))
	}

	store, err := openVectorStore(c)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, skillmatch.WithVectorStore(store))
	}

	e, err := skillmatch.NewEngine(c.Context, c.String("source"), append(opts, extra...)...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return e, nil
}

// openVectorStore opens the configured cache backend. The file backend is
// left to the engine; nothing is opened without a credential.
func openVectorStore(c *cli.Context) (storage.VectorStore, error) {
	dir := c.String("cache-dir")
	backend := strings.ToLower(c.String("cache-backend"))
	switch backend {
	case "file", "badger", "sqlite":
	default:
		return nil, fmt.Errorf("invalid cache backend %q: must be one of file, badger, sqlite", backend)
	}
	if backend == "file" || c.String("api-key") == "" {
		return nil, nil
	}

	if backend == "badger" {
		store, err := badger.NewStore(dir, badger.WithLogger(slog.Default()))
		if err != nil {
			return nil, fmt.Errorf("failed to open badger cache: %w", err)
		}
		return store, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	store, err := sqlite.NewStore(filepath.Join(dir, sqlite.DatabaseFileName), sqlite.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
	}
	return store, nil
}

func queryArg(c *cli.Context) (string, error) {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return "", fmt.Errorf("a query is required")
	}
	return query, nil
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

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
