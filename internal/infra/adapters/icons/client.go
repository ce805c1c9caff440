package icons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"course-cover-generator/internal/config"
	"course-cover-generator/internal/domain"
	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/adapter"
	"course-cover-generator/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.IconSearchAdapter = (*Client)(nil)

// Client implements adapter.IconSearchAdapter against the Freepik-style
// icon-search API. Unlike the catalog adapter it retries in place: a single
// icon lookup is cheap to repeat and its failure must not fail generation,
// so exhausted retries degrade to a default reference instead of an error.
type Client struct {
	base        string
	key         string
	thumbSize   int
	limit       int
	maxAttempts int
	baseDelay   time.Duration
	defEmpty    string
	defRetry    string
	downloadDir string
	client      *http.Client
	log         *zerolog.Logger
}

func NewClient(cfg config.IconsConfig, logger *zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	l := logger.With().Str("component", "IconSearch").Logger()
	return &Client{
		base:        cfg.BaseURL,
		key:         cfg.APIKey,
		thumbSize:   cfg.ThumbnailSize,
		limit:       cfg.Limit,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		defEmpty:    cfg.DefaultEmpty,
		defRetry:    cfg.DefaultRetry,
		downloadDir: cfg.DownloadDir,
		client:      &http.Client{Timeout: 20 * time.Second},
		log:         &l,
	}, nil
}

type searchResponse struct {
	Data []searchHit `json:"data"`
}

type searchHit struct {
	Style struct {
		Name string `json:"name"`
	} `json:"style"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// Resolve looks up term and returns an icon reference. Empty results map to
// the empty-result default, exhausted retries to a second, distinguishable
// default. The only error returned is context cancellation.
func (c *Client) Resolve(ctx context.Context, term string) (model.IconRef, error) {
	delay := c.baseDelay
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		hits, err := c.search(ctx, term)
		if err == nil {
			if len(hits) == 0 {
				c.log.Warn().Str("term", term).Msg("no icon results, using empty-result default")
				metrics.IncIconFallback("empty")
				return model.IconRef{URL: c.defEmpty, Source: model.IconDefaultEmpty}, nil
			}
			return pickIcon(hits), nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.IconRef{}, err
		}
		c.log.Warn().Err(err).Str("term", term).
			Int("attempt", attempt).Int("max_attempts", c.maxAttempts).
			Msg("icon search failed")
		if attempt < c.maxAttempts {
			metrics.IncIconRetry()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return model.IconRef{}, ctx.Err()
			}
			delay *= 2
		}
	}
	c.log.Error().Str("term", term).Msg("icon search retries exhausted, using fallback default")
	metrics.IncIconFallback("exhausted")
	return model.IconRef{URL: c.defRetry, Source: model.IconDefaultExhausted}, nil
}

func (c *Client) search(ctx context.Context, term string) ([]searchHit, error) {
	q := url.Values{}
	q.Set("term", term)
	q.Set("filters[shape]", "lineal-color")
	q.Set("thumbnail_size", strconv.Itoa(c.thumbSize))
	q.Set("page", "1")
	q.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/icons?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-gb")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-freepik-api-key", c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("icon search http %d", resp.StatusCode)
	}
	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode icon search: %w", err)
	}
	var hits []searchHit
	for _, h := range payload.Data {
		if len(h.Thumbnails) > 0 && h.Thumbnails[0].URL != "" {
			hits = append(hits, h)
		}
	}
	return hits, nil
}

// pickIcon prefers hits whose style name matches the "lineal color" flavor;
// selection within the chosen set is uniform random.
func pickIcon(hits []searchHit) model.IconRef {
	var lineal []searchHit
	for _, h := range hits {
		if strings.Contains(strings.ToLower(h.Style.Name), "lineal color") {
			lineal = append(lineal, h)
		}
	}
	pool := hits
	if len(lineal) > 0 {
		pool = lineal
	}
	hit := pool[rand.Intn(len(pool))]
	return model.IconRef{URL: hit.Thumbnails[0].URL, Source: model.IconFromSearch}
}

// Download persists ref under <downloadDir>/<alias>.png and returns the
// local path. It is idempotent per alias: an existing file short-circuits
// the network call. Any failure falls back to the remote URL unchanged so
// generation can continue with the hosted image.
func (c *Client) Download(ctx context.Context, ref model.IconRef, alias string) string {
	if c.downloadDir == "" {
		return ref.URL
	}
	local := filepath.Join(c.downloadDir, alias+".png")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if err := c.fetchToFile(ctx, ref.URL, local); err != nil {
		c.log.Warn().Err(err).Str("course", alias).Msg("icon download failed, keeping remote URL")
		return ref.URL
	}
	return local
}

func (c *Client) fetchToFile(ctx context.Context, remote, local string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("icon download http %d", resp.StatusCode)
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return err
	}
	f, err := os.Create(local)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(local)
		return err
	}
	return f.Close()
}
