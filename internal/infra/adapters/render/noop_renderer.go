package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"course-cover-generator/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.RenderAdapter = (*NoopRenderer)(nil)

// NoopRenderer implements adapter.RenderAdapter for local/dev runs without a
// browser. It writes the would-be render parameters to outPath instead of a
// bitmap, which keeps the skip-if-exists logic exercisable.
type NoopRenderer struct {
	log *zerolog.Logger
}

func NewNoopRenderer(logger *zerolog.Logger) *NoopRenderer {
	l := logger.With().Str("component", "NoopRenderer").Logger()
	return &NoopRenderer{log: &l}
}

func (r *NoopRenderer) Render(ctx context.Context, spec adapter.RenderSpec, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	body := fmt.Sprintf("noop cover type=%s name=%q image=%s bg=%s lang=%s status=%s\n",
		spec.CourseType, spec.CourseName, spec.ImageURL, spec.BgColor, spec.Lang, spec.Status)
	if err := os.WriteFile(outPath, []byte(body), 0o644); err != nil {
		return err
	}
	r.log.Info().Str("out", outPath).Msg("[noop-render] cover placeholder written")
	return nil
}
