package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"course-cover-generator/internal/domain"
	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/adapter"
	"course-cover-generator/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// PathTally sums up one path-covers run.
type PathTally struct {
	Rendered int
	Skipped  int
	Failed   int
}

// PathsUseCase builds covers for learning paths. Two modes: templated
// per-path covers ("Linux Interview Questions") backed by local icons, and
// regular course covers for every level-1 course of each path.
type PathsUseCase struct {
	catalog      adapter.CatalogAdapter
	render       adapter.RenderAdapter
	store        repository.AssetConfigRepository
	covers       CoverGenerator
	outDir       string
	iconsDir     string
	aliasSuffix  string
	nameTemplate string
	exclude      []string // path aliases never processed in course mode
	log          *zerolog.Logger
}

func NewPathsUseCase(
	catalog adapter.CatalogAdapter,
	render adapter.RenderAdapter,
	store repository.AssetConfigRepository,
	covers CoverGenerator,
	outDir, iconsDir, aliasSuffix, nameTemplate string,
	exclude []string,
	logger *zerolog.Logger,
) *PathsUseCase {
	l := logger.With().Str("component", "PathsUC").Logger()
	return &PathsUseCase{
		catalog:      catalog,
		render:       render,
		store:        store,
		covers:       covers,
		outDir:       outDir,
		iconsDir:     iconsDir,
		aliasSuffix:  aliasSuffix,
		nameTemplate: nameTemplate,
		exclude:      exclude,
		log:          &l,
	}
}

func (uc *PathsUseCase) listPaths(ctx context.Context, filter []string) ([]model.PathSummary, error) {
	paths, err := uc.catalog.ListPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	if len(filter) == 0 {
		return paths, nil
	}
	want := map[string]bool{}
	for _, alias := range filter {
		want[alias] = true
	}
	var kept []model.PathSummary
	for _, p := range paths {
		if want[p.Alias] {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// GeneratePathCovers renders one templated cover per path and language. A
// path without a local icon file is skipped rather than failed; the derived
// alias keeps its visual config in the same durable document as courses.
func (uc *PathsUseCase) GeneratePathCovers(ctx context.Context, langs []string, overwrite bool, filter []string) (PathTally, error) {
	var tally PathTally
	paths, err := uc.listPaths(ctx, filter)
	if err != nil {
		return tally, err
	}
	if len(paths) == 0 {
		return tally, fmt.Errorf("no paths to process: %w", domain.ErrInvalidArgument)
	}

	for _, p := range paths {
		iconPath := filepath.Join(uc.iconsDir, p.Alias+".png")
		if _, err := os.Stat(iconPath); err != nil {
			uc.log.Warn().Str("path", p.Alias).Str("icon", iconPath).Msg("no icon for path, skipping")
			tally.Skipped += len(langs)
			continue
		}

		alias := p.Alias + uc.aliasSuffix
		name := fmt.Sprintf(uc.nameTemplate, p.Name)
		cfg, ok := uc.store.Get(ctx, alias)
		if !ok {
			cfg = &model.VisualConfig{
				ImageURL:  iconPath,
				BgColor:   model.RandomBgColor(),
				CreatedAt: time.Now().UTC(),
			}
			if err := uc.store.Set(ctx, alias, cfg); err != nil {
				return tally, fmt.Errorf("store path config %s: %w", alias, err)
			}
		}

		for _, lang := range langs {
			outPath := filepath.Join(uc.outDir, lang, alias+".png")
			if !overwrite {
				if _, err := os.Stat(outPath); err == nil {
					tally.Skipped++
					continue
				}
			}
			spec := adapter.RenderSpec{
				CourseType: "normal",
				CourseName: sanitizeName(name),
				ImageURL:   cfg.ImageURL,
				BgColor:    cfg.BgColor,
				Lang:       lang,
			}
			if err := uc.render.Render(ctx, spec, outPath); err != nil {
				uc.log.Error().Err(err).Str("path", p.Alias).Str("lang", lang).Msg("path cover render failed")
				tally.Failed++
				continue
			}
			uc.log.Info().Str("path", p.Alias).Str("lang", lang).Str("out", outPath).Msg("path cover generated")
			tally.Rendered++
		}
	}
	return tally, nil
}

// GenerateLevel1CourseCovers walks each path's level-1 courses and generates
// regular course covers for them across langs. Metadata is fetched once per
// course and shared across its languages.
func (uc *PathsUseCase) GenerateLevel1CourseCovers(ctx context.Context, langs []string, overwrite bool, pathFilter, courseFilter []string) (PathTally, error) {
	var tally PathTally
	if len(langs) == 0 {
		return tally, fmt.Errorf("no languages given: %w", domain.ErrInvalidArgument)
	}
	paths, err := uc.listPaths(ctx, pathFilter)
	if err != nil {
		return tally, err
	}

	wantCourse := map[string]bool{}
	for _, alias := range courseFilter {
		wantCourse[alias] = true
	}
	excluded := map[string]bool{}
	for _, alias := range uc.exclude {
		excluded[alias] = true
	}

	for _, p := range paths {
		if excluded[p.Alias] {
			uc.log.Info().Str("path", p.Alias).Msg("path excluded from course covers")
			continue
		}
		detail, err := uc.catalog.FetchPath(ctx, p.Alias)
		if err != nil {
			uc.log.Warn().Err(err).Str("path", p.Alias).Msg("cannot fetch path detail, skipping")
			continue
		}
		aliases := detail.Level1Aliases()
		if len(aliases) == 0 {
			continue
		}
		uc.log.Info().Str("path", p.Alias).Int("courses", len(aliases)).Msg("processing level-1 courses")

		for _, alias := range aliases {
			if len(wantCourse) > 0 && !wantCourse[alias] {
				continue
			}
			meta, err := uc.catalog.FetchCourse(ctx, alias, langs[0])
			if errors.Is(err, domain.ErrCourseNotFound) {
				uc.log.Warn().Str("course", alias).Msg("course not found, skipping")
				tally.Skipped += len(langs)
				continue
			}
			if err != nil && !errors.Is(err, domain.ErrLangUnsupported) {
				uc.log.Error().Err(err).Str("course", alias).Msg("metadata fetch failed")
				tally.Failed += len(langs)
				continue
			}

			for _, lang := range langs {
				outcome := uc.covers.Generate(ctx, model.WorkItem{Course: alias, Lang: lang}, meta, overwrite)
				switch {
				case outcome.Kind == model.OutcomeRendered:
					tally.Rendered++
				case outcome.Kind.Success():
					tally.Skipped++
				default:
					tally.Failed++
				}
			}
		}
	}
	return tally, nil
}
