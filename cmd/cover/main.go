// File: cmd/cover/main.go
// Generates a single course cover: cover [-overwrite] <alias> <lang>
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"course-cover-generator/internal/config"
	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/adapter"
	"course-cover-generator/internal/infra/adapters/catalog"
	"course-cover-generator/internal/infra/adapters/icons"
	"course-cover-generator/internal/infra/adapters/render"
	"course-cover-generator/internal/infra/logging"
	"course-cover-generator/internal/infra/metrics"
	"course-cover-generator/internal/infra/store"
	"course-cover-generator/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode (console logs, noop renderer)")
	overwrite := flag.Bool("overwrite", false, "overwrite an existing cover")
	status := flag.String("status", "", "optional cover status label")
	flag.Parse()

	if flag.NArg() != 2 {
		log.Fatalf("usage: cover [-overwrite] <course-alias> <lang>")
	}
	item := model.WorkItem{Course: flag.Arg(0), Lang: flag.Arg(1)}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	assetStore := store.NewFileStore(cfg.Store.Path, logger)
	catalogClient := catalog.NewClient(cfg.Catalog)
	iconClient, err := icons.NewClient(cfg.Icons, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("icon search")
	}
	var renderer adapter.RenderAdapter
	if cfg.Runtime.Dev {
		renderer = render.NewNoopRenderer(logger)
	} else {
		renderer = render.NewChromeRenderer(cfg.Render, logger)
	}

	coverUC := usecase.NewCoverUseCase(catalogClient, iconClient, renderer, assetStore, cfg.Output.Dir, *status, logger)
	outcome := coverUC.Generate(context.Background(), item, nil, *overwrite)

	switch outcome.Kind {
	case model.OutcomeFailed, model.OutcomeNotFound:
		logger.Error().Str("item", item.String()).Str("outcome", outcome.Kind.String()).Str("reason", outcome.Reason).Msg("generation failed")
		os.Exit(1)
	default:
		logger.Info().Str("item", item.String()).Str("outcome", outcome.Kind.String()).Msg("done")
	}
}
