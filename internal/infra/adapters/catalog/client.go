package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"course-cover-generator/internal/config"
	"course-cover-generator/internal/domain"
	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CatalogAdapter = (*Client)(nil)

// Client implements adapter.CatalogAdapter against the course catalog API.
// It holds no retry policy of its own; transient failures bubble up to the
// batch orchestrator, which owns retries for this system.
type Client struct {
	base   string
	ua     string
	client *http.Client
}

func NewClient(cfg config.CatalogConfig) *Client {
	return &Client{
		base:   cfg.BaseURL,
		ua:     cfg.UserAgent,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (int, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, domain.ErrCourseNotFound
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("catalog http %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

// FetchCourse returns the course metadata for alias. A 404 maps to
// domain.ErrCourseNotFound. When the course exists but does not list lang,
// the metadata is returned together with domain.ErrLangUnsupported so
// callers can still amortize the fetch across languages.
func (c *Client) FetchCourse(ctx context.Context, alias, lang string) (*model.CourseMetadata, error) {
	var payload struct {
		Course struct {
			Name  string   `json:"name"`
			Type  int      `json:"type"`
			Langs []string `json:"langs"`
		} `json:"course"`
	}
	q := url.Values{}
	q.Set("lang", lang)
	if _, err := c.get(ctx, "/courses/"+alias, q, &payload); err != nil {
		return nil, err
	}

	meta := &model.CourseMetadata{
		Name:   payload.Course.Name,
		TypeID: payload.Course.Type,
		Langs:  payload.Course.Langs,
	}
	if !meta.Supports(lang) {
		return meta, domain.ErrLangUnsupported
	}
	return meta, nil
}

// ListCourses enumerates the whole catalog for a language.
func (c *Client) ListCourses(ctx context.Context, lang string) ([]model.CourseSummary, error) {
	var payload struct {
		Courses []struct {
			Alias string `json:"alias"`
			Name  string `json:"name"`
			Type  int    `json:"type"`
		} `json:"courses"`
	}
	q := url.Values{}
	q.Set("lang", lang)
	if _, err := c.get(ctx, "/courses", q, &payload); err != nil {
		return nil, err
	}
	courses := make([]model.CourseSummary, 0, len(payload.Courses))
	for _, co := range payload.Courses {
		courses = append(courses, model.CourseSummary{Alias: co.Alias, Name: co.Name, TypeID: co.Type})
	}
	return courses, nil
}

// ListPaths returns the basic learning-path listing.
func (c *Client) ListPaths(ctx context.Context) ([]model.PathSummary, error) {
	var payload struct {
		Paths []struct {
			Alias string `json:"alias"`
			Name  string `json:"name"`
		} `json:"paths"`
	}
	if _, err := c.get(ctx, "/paths/basic", nil, &payload); err != nil {
		return nil, err
	}
	paths := make([]model.PathSummary, 0, len(payload.Paths))
	for _, p := range payload.Paths {
		paths = append(paths, model.PathSummary{Alias: p.Alias, Name: p.Name})
	}
	return paths, nil
}

// FetchPath returns a path with its per-level course listing.
func (c *Client) FetchPath(ctx context.Context, alias string) (*model.PathDetail, error) {
	var payload struct {
		Path struct {
			Alias  string `json:"alias"`
			Name   string `json:"name"`
			Levels []struct {
				Level   int `json:"level"`
				Courses []struct {
					Alias string `json:"alias"`
					Name  string `json:"name"`
					Type  int    `json:"type"`
				} `json:"courses"`
			} `json:"levels"`
		} `json:"path"`
	}
	if _, err := c.get(ctx, "/paths/"+alias, nil, &payload); err != nil {
		return nil, err
	}

	detail := &model.PathDetail{Alias: payload.Path.Alias, Name: payload.Path.Name}
	for _, lvl := range payload.Path.Levels {
		level := model.PathLevel{Level: lvl.Level}
		for _, co := range lvl.Courses {
			level.Courses = append(level.Courses, model.CourseSummary{Alias: co.Alias, Name: co.Name, TypeID: co.Type})
		}
		detail.Levels = append(detail.Levels, level)
	}
	return detail, nil
}
