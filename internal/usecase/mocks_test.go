package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"course-cover-generator/internal/domain"
	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// ---- Fakes ----

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type fakeCatalog struct {
	mu      sync.Mutex
	courses map[string]*model.CourseMetadata
	paths   []model.PathSummary
	details map[string]*model.PathDetail
	calls   int
	// failFirst makes the first N FetchCourse calls fail transiently.
	failFirst int
}

func (f *fakeCatalog) FetchCourse(ctx context.Context, alias, lang string) (*model.CourseMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFirst {
		return nil, fmt.Errorf("catalog http 503")
	}
	meta, ok := f.courses[alias]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	if !meta.Supports(lang) {
		return meta, domain.ErrLangUnsupported
	}
	return meta, nil
}

func (f *fakeCatalog) ListCourses(ctx context.Context, lang string) ([]model.CourseSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CourseSummary
	for alias, meta := range f.courses {
		out = append(out, model.CourseSummary{Alias: alias, Name: meta.Name, TypeID: meta.TypeID})
	}
	return out, nil
}

func (f *fakeCatalog) ListPaths(ctx context.Context) ([]model.PathSummary, error) {
	return f.paths, nil
}

func (f *fakeCatalog) FetchPath(ctx context.Context, alias string) (*model.PathDetail, error) {
	if d, ok := f.details[alias]; ok {
		return d, nil
	}
	return nil, domain.ErrCourseNotFound
}

type fakeIcons struct {
	mu       sync.Mutex
	ref      model.IconRef
	resolves int
}

func (f *fakeIcons) Resolve(ctx context.Context, term string) (model.IconRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	return f.ref, nil
}

func (f *fakeIcons) Download(ctx context.Context, ref model.IconRef, alias string) string {
	return ref.URL
}

// fakeRender records every spec it sees and writes a placeholder artifact so
// skip-if-exists logic is observable.
type fakeRender struct {
	mu    sync.Mutex
	specs []adapter.RenderSpec
	fail  bool
}

func (f *fakeRender) Render(ctx context.Context, spec adapter.RenderSpec, outPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("browser crashed")
	}
	f.specs = append(f.specs, spec)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(spec.BgColor), 0o644)
}

func (f *fakeRender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.specs)
}

type memStore struct {
	mu      sync.Mutex
	configs map[string]*model.VisualConfig
}

func newMemStore() *memStore {
	return &memStore{configs: map[string]*model.VisualConfig{}}
}

func (m *memStore) Get(ctx context.Context, alias string) (*model.VisualConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[alias]
	return cfg, ok
}

func (m *memStore) Set(ctx context.Context, alias string, cfg *model.VisualConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[alias] = cfg
	return nil
}

func (m *memStore) Remove(ctx context.Context, aliases []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alias := range aliases {
		delete(m.configs, alias)
	}
	return nil
}

func (m *memStore) Keys(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.configs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
