package render

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"course-cover-generator/internal/config"
	"course-cover-generator/internal/domain/ports/adapter"
	"course-cover-generator/internal/infra/metrics"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.RenderAdapter = (*ChromeRenderer)(nil)

// ChromeRenderer screenshots the cover template through headless Chrome.
// The template is rendered at viewport size and clipped to the visible
// canvas (1400x720 inside a 1600x900 surface by default).
type ChromeRenderer struct {
	templateURL string
	vpWidth     int
	vpHeight    int
	clipWidth   int
	clipHeight  int
	timeout     time.Duration
	log         *zerolog.Logger
}

func NewChromeRenderer(cfg config.RenderConfig, logger *zerolog.Logger) *ChromeRenderer {
	l := logger.With().Str("component", "ChromeRenderer").Logger()
	return &ChromeRenderer{
		templateURL: cfg.TemplateURL,
		vpWidth:     cfg.ViewportWidth,
		vpHeight:    cfg.ViewportHeight,
		clipWidth:   cfg.ClipWidth,
		clipHeight:  cfg.ClipHeight,
		timeout:     cfg.Timeout,
		log:         &l,
	}
}

// Render navigates to the parameterized template URL and writes the clipped
// screenshot to outPath. Each call runs in its own browser context bounded
// by the configured timeout.
func (r *ChromeRenderer) Render(ctx context.Context, spec adapter.RenderSpec, outPath string) error {
	target := r.templateURL + "?" + encodeParams(spec)

	start := time.Now()
	buf, err := r.capture(ctx, target)
	metrics.ObserveRender(time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, buf, 0o644); err != nil {
		return err
	}
	r.log.Debug().Str("out", outPath).Str("url", target).Msg("cover rendered")
	return nil
}

func (r *ChromeRenderer) capture(ctx context.Context, target string) ([]byte, error) {
	cctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	tctx, cancelTimeout := context.WithTimeout(cctx, r.timeout)
	defer cancelTimeout()

	var buf []byte
	err := chromedp.Run(tctx,
		chromedp.EmulateViewport(int64(r.vpWidth), int64(r.vpHeight)),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// give webfonts and the icon image a moment to settle
		chromedp.Sleep(750*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithClip(&page.Viewport{
					X:      0,
					Y:      0,
					Width:  float64(r.clipWidth),
					Height: float64(r.clipHeight),
					Scale:  1,
				}).
				Do(ctx)
			return err
		}),
	)
	return buf, err
}

func encodeParams(spec adapter.RenderSpec) string {
	q := url.Values{}
	q.Set("course_type", spec.CourseType)
	q.Set("course_name", spec.CourseName)
	q.Set("image_url", spec.ImageURL)
	q.Set("bg_color", spec.BgColor)
	q.Set("lang", spec.Lang)
	if spec.Status != "" {
		q.Set("status", spec.Status)
	}
	return q.Encode()
}
