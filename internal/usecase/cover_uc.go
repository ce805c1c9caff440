package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"course-cover-generator/internal/domain"
	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/adapter"
	"course-cover-generator/internal/domain/ports/repository"
	"course-cover-generator/internal/infra/logging"

	"github.com/rs/zerolog"
)

// CoverGenerator produces exactly one Outcome per work item. Satisfied by
// CoverUseCase; the batch orchestrator depends on this interface so tests
// can substitute scripted generators.
type CoverGenerator interface {
	Generate(ctx context.Context, item model.WorkItem, meta *model.CourseMetadata, overwrite bool) model.Outcome
}

var _ CoverGenerator = (*CoverUseCase)(nil)

// CoverUseCase generates one cover per (course, language) work item:
// skip-if-exists, metadata lookup, visual-config lookup-or-create, render.
type CoverUseCase struct {
	catalog adapter.CatalogAdapter
	icons   adapter.IconSearchAdapter
	render  adapter.RenderAdapter
	store   repository.AssetConfigRepository
	outDir  string
	status  string // optional cover label applied to every render of this run
	log     *zerolog.Logger
}

func NewCoverUseCase(
	catalog adapter.CatalogAdapter,
	icons adapter.IconSearchAdapter,
	render adapter.RenderAdapter,
	store repository.AssetConfigRepository,
	outDir string,
	status string,
	logger *zerolog.Logger,
) *CoverUseCase {
	l := logger.With().Str("component", "CoverUC").Logger()
	return &CoverUseCase{
		catalog: catalog,
		icons:   icons,
		render:  render,
		store:   store,
		outDir:  outDir,
		status:  status,
		log:     &l,
	}
}

// ArtifactPath is where the cover for item lands: <outDir>/<lang>/<course>.png.
func (uc *CoverUseCase) ArtifactPath(item model.WorkItem) string {
	return filepath.Join(uc.outDir, item.Lang, item.Course+".png")
}

// Generate runs the per-item state machine, first match wins. meta may carry
// a pre-fetched CourseMetadata (amortized across the languages of a batch);
// nil means fetch. Classified absences come back as terminal skip outcomes,
// everything unclassified as Failed with a human-readable reason.
func (uc *CoverUseCase) Generate(ctx context.Context, item model.WorkItem, meta *model.CourseMetadata, overwrite bool) model.Outcome {
	ctx = logging.WithCourse(ctx, item.Course)
	ctx = logging.WithLang(ctx, item.Lang)
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "CoverUC.Generate")()

	outPath := uc.ArtifactPath(item)
	if !overwrite {
		if _, err := os.Stat(outPath); err == nil {
			log.Debug().Str("path", outPath).Msg("cover exists, skipping")
			return model.SkippedExisting(item)
		}
	}

	if meta == nil {
		var err error
		meta, err = uc.catalog.FetchCourse(ctx, item.Course, item.Lang)
		switch {
		case errors.Is(err, domain.ErrCourseNotFound):
			log.Warn().Msg("course not found")
			return model.NotFound(item)
		case errors.Is(err, domain.ErrLangUnsupported):
			log.Info().Msg("language not supported, skipping")
			return model.SkippedUnsupportedLang(item)
		case err != nil:
			return model.Failed(item, fmt.Sprintf("fetch metadata: %v", err))
		}
	} else if !meta.Supports(item.Lang) {
		log.Info().Msg("language not supported, skipping")
		return model.SkippedUnsupportedLang(item)
	}

	cfg, err := uc.ensureConfig(ctx, item.Course)
	if err != nil {
		return model.Failed(item, err.Error())
	}

	spec := adapter.RenderSpec{
		CourseType: model.CourseTypeName(meta.TypeID),
		CourseName: sanitizeName(meta.Name),
		ImageURL:   cfg.ImageURL,
		BgColor:    cfg.BgColor,
		Lang:       item.Lang,
		Status:     uc.status,
	}
	if err := uc.render.Render(ctx, spec, outPath); err != nil {
		return model.Failed(item, fmt.Sprintf("render: %v", err))
	}
	log.Info().Str("path", outPath).Msg("cover generated")
	return model.Rendered(item)
}

// ensureConfig returns the course's durable VisualConfig, creating and
// persisting it on first resolution. An existing config is reused as-is and
// never regenerated, which keeps a course's look stable across languages
// and over time.
func (uc *CoverUseCase) ensureConfig(ctx context.Context, alias string) (*model.VisualConfig, error) {
	if cfg, ok := uc.store.Get(ctx, alias); ok {
		return cfg, nil
	}

	ref, err := uc.icons.Resolve(ctx, searchTerm(alias))
	if err != nil {
		return nil, fmt.Errorf("resolve icon: %w", err)
	}
	local := uc.icons.Download(ctx, ref, alias)

	cfg := &model.VisualConfig{
		ImageURL:  local,
		BgColor:   model.RandomBgColor(),
		CreatedAt: time.Now().UTC(),
	}
	if local != ref.URL {
		cfg.SourceURL = ref.URL
	}
	if err := uc.store.Set(ctx, alias, cfg); err != nil {
		return nil, fmt.Errorf("store visual config: %w", err)
	}
	return cfg, nil
}

func searchTerm(alias string) string {
	return strings.ReplaceAll(alias, "-", " ")
}

// sanitizeName strips backticks, which the template language mis-renders.
func sanitizeName(name string) string {
	return strings.ReplaceAll(name, "`", "")
}
