// File: cmd/paths/main.go
// Generates covers for learning paths: templated per-path covers by default,
// or regular covers for every level-1 course of each path with -courses.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"course-cover-generator/internal/config"
	"course-cover-generator/internal/domain/ports/adapter"
	"course-cover-generator/internal/infra/adapters/catalog"
	"course-cover-generator/internal/infra/adapters/icons"
	"course-cover-generator/internal/infra/adapters/render"
	"course-cover-generator/internal/infra/logging"
	"course-cover-generator/internal/infra/metrics"
	"course-cover-generator/internal/infra/store"
	"course-cover-generator/internal/usecase"
)

var supportedLangs = []string{"en", "ja", "zh", "fr", "es", "de", "ru", "ko", "pt"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode (console logs, noop renderer)")
	lang := flag.String("lang", "all", "language code or 'all'")
	overwrite := flag.Bool("overwrite", false, "overwrite existing covers")
	pathFilter := flag.String("path-filter", "", "comma-separated path aliases to process")
	courseFilter := flag.String("course-filter", "", "comma-separated course aliases to process (-courses mode)")
	courseMode := flag.Bool("courses", false, "generate covers for level-1 courses instead of path covers")
	nameTemplate := flag.String("template", "", "path cover name template override, %s = path name")
	flag.Parse()

	langs := supportedLangs
	if *lang != "all" {
		langs = []string{*lang}
	}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *nameTemplate != "" {
		if !strings.Contains(*nameTemplate, "%s") {
			log.Fatalf("-template must contain %%s as the path name placeholder")
		}
		cfg.Paths.NameTemplate = *nameTemplate
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

	// Level-1 course covers carry the "course" status label.
	coverUC := usecase.NewCoverUseCase(catalogClient, iconClient, renderer, assetStore, cfg.Output.Dir, "course", logger)
	pathsUC := usecase.NewPathsUseCase(
		catalogClient, renderer, assetStore, coverUC,
		cfg.Output.Dir, cfg.Paths.IconsDir, cfg.Paths.AliasSuffix, cfg.Paths.NameTemplate,
		cfg.Paths.Exclude,
		logger,
	)

	var tally usecase.PathTally
	if *courseMode {
		tally, err = pathsUC.GenerateLevel1CourseCovers(ctx, langs, *overwrite, splitList(*pathFilter), splitList(*courseFilter))
	} else {
		tally, err = pathsUC.GeneratePathCovers(ctx, langs, *overwrite, splitList(*pathFilter))
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("path covers")
	}

	logger.Info().Int("rendered", tally.Rendered).Int("skipped", tally.Skipped).Int("failed", tally.Failed).Msg("done")
	if tally.Failed > 0 {
		os.Exit(1)
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
