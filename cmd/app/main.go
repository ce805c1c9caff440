// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"course-cover-generator/internal/config"
	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/adapter"
	"course-cover-generator/internal/infra/adapters/catalog"
	"course-cover-generator/internal/infra/adapters/icons"
	"course-cover-generator/internal/infra/adapters/render"
	"course-cover-generator/internal/infra/logging"
	"course-cover-generator/internal/infra/metrics"
	"course-cover-generator/internal/infra/preview"
	"course-cover-generator/internal/infra/store"
	"course-cover-generator/internal/usecase"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode (console logs, noop renderer)")
	lang := flag.String("lang", "", "target language code (required)")
	aliasFile := flag.String("aliases", "", "newline-separated course aliases; empty fetches the whole catalog")
	overwrite := flag.Bool("overwrite", false, "overwrite existing covers")
	workers := flag.Int("workers", 0, "worker count override")
	retries := flag.Int("retries", 0, "max retry passes override")
	cleanup := flag.Bool("cleanup", false, "remove cache entries for courses the catalog no longer knows")
	status := flag.String("status", "", "optional cover status label (e.g. project)")
	flag.Parse()

	if *lang == "" {
		log.Fatalf("usage: app -lang <code> [-aliases file] [-overwrite] [-cleanup]")
	}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *retries > 0 {
		cfg.Batch.MaxRetries = *retries
	}
	if *cleanup {
		cfg.Batch.CleanupMissing = true
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Adapters ----
	assetStore := store.NewFileStore(cfg.Store.Path, logger)
	catalogClient := catalog.NewClient(cfg.Catalog)
	iconClient, err := icons.NewClient(cfg.Icons, logger)
	if err != nil {
		// Missing credential is fatal before any batch work begins.
		logger.Fatal().Err(err).Msg("icon search")
	}
	var renderer adapter.RenderAdapter
	if cfg.Runtime.Dev {
		renderer = render.NewNoopRenderer(logger)
	} else {
		renderer = render.NewChromeRenderer(cfg.Render, logger)
	}

	// ---- Use cases ----
	coverUC := usecase.NewCoverUseCase(catalogClient, iconClient, renderer, assetStore, cfg.Output.Dir, *status, logger)
	batchUC := usecase.NewBatchUseCase(
		coverUC, assetStore,
		cfg.Batch.Workers, cfg.Batch.MaxRetries, cfg.Batch.RetryDelay,
		*overwrite, cfg.Batch.CleanupMissing,
		logger,
	)

	items, err := loadWorkItems(ctx, catalogClient, *aliasFile, *lang)
	if err != nil {
		logger.Fatal().Err(err).Msg("work items")
	}
	if len(items) == 0 {
		logger.Warn().Str("lang", *lang).Msg("nothing to generate")
		return
	}

	// Preview server carries the template, assets and /metrics while the
	// batch runs; both stop together.
	srv := preview.NewServer(cfg.Preview, logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)

	var result *usecase.BatchResult
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		var runErr error
		result, runErr = batchUC.Run(gctx, items)
		return runErr
	})

	if err := g.Wait(); err != nil && result == nil {
		logger.Fatal().Err(err).Msg("batch aborted")
	}

	rendered, skipped, failed := result.Counts()
	logger.Info().Int("rendered", rendered).Int("skipped", skipped).Int("failed", failed).Msg("done")
	for _, o := range result.Failed {
		logger.Error().Str("item", o.Item.String()).Str("reason", o.Reason).Msg("failed item")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// loadWorkItems builds the batch: either every alias the catalog lists for
// lang, or the aliases named in a local file (one per line, # comments).
func loadWorkItems(ctx context.Context, c *catalog.Client, aliasFile, lang string) ([]model.WorkItem, error) {
	var aliases []string
	if aliasFile != "" {
		b, err := os.ReadFile(aliasFile)
		if err != nil {
			return nil, fmt.Errorf("read alias file: %w", err)
		}
		for _, line := range strings.Split(string(b), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				aliases = append(aliases, line)
			}
		}
	} else {
		courses, err := c.ListCourses(ctx, lang)
		if err != nil {
			return nil, fmt.Errorf("list courses: %w", err)
		}
		for _, co := range courses {
			aliases = append(aliases, co.Alias)
		}
	}

	items := make([]model.WorkItem, 0, len(aliases))
	for _, alias := range aliases {
		items = append(items, model.WorkItem{Course: alias, Lang: lang})
	}
	return items, nil
}
