package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"course-cover-generator/internal/domain"
	"course-cover-generator/internal/domain/model"
)

func pathsFixtureCatalog() *fakeCatalog {
	return &fakeCatalog{
		courses: map[string]*model.CourseMetadata{
			"linux-basics":        {Name: "Linux Basics", Langs: []string{"en"}},
			"alibaba-cloud-intro": {Name: "Alibaba Cloud Intro", Langs: []string{"en"}},
		},
		paths: []model.PathSummary{
			{Alias: "linux", Name: "Linux"},
			{Alias: "alibaba", Name: "Alibaba"},
		},
		details: map[string]*model.PathDetail{
			"linux": {Alias: "linux", Name: "Linux", Levels: []model.PathLevel{
				{Level: 1, Courses: []model.CourseSummary{{Alias: "linux-basics", Name: "Linux Basics"}}},
			}},
			"alibaba": {Alias: "alibaba", Name: "Alibaba", Levels: []model.PathLevel{
				{Level: 1, Courses: []model.CourseSummary{{Alias: "alibaba-cloud-intro", Name: "Alibaba Cloud Intro"}}},
			}},
		},
	}
}

func TestPathsUC_Level1SkipsExcludedPaths(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gen := newScriptedGenerator(0)
	uc := NewPathsUseCase(
		pathsFixtureCatalog(), &fakeRender{}, newMemStore(), gen,
		t.TempDir(), t.TempDir(), "-interview-questions", "%s Interview Questions",
		[]string{"alibaba"}, nopLogger(),
	)

	tally, err := uc.GenerateLevel1CourseCovers(ctx, []string{"en"}, false, nil, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tally.Rendered != 1 || tally.Failed != 0 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
	if got := gen.callCount(model.WorkItem{Course: "linux-basics", Lang: "en"}); got != 1 {
		t.Fatalf("expected linux-basics generated once, got %d", got)
	}
	if got := gen.callCount(model.WorkItem{Course: "alibaba-cloud-intro", Lang: "en"}); got != 0 {
		t.Fatalf("excluded path's course must never be generated, got %d calls", got)
	}
}

func TestPathsUC_Level1RejectsEmptyLangs(t *testing.T) {
	t.Parallel()

	uc := NewPathsUseCase(
		pathsFixtureCatalog(), &fakeRender{}, newMemStore(), newScriptedGenerator(0),
		t.TempDir(), t.TempDir(), "-interview-questions", "%s Interview Questions",
		nil, nopLogger(),
	)

	if _, err := uc.GenerateLevel1CourseCovers(context.Background(), nil, false, nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty langs, got %v", err)
	}
}

func TestPathsUC_PathCoversTemplatedAlias(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cat := &fakeCatalog{paths: []model.PathSummary{
		{Alias: "linux", Name: "Linux"},
		{Alias: "devops", Name: "DevOps"},
	}}
	iconsDir := t.TempDir()
	iconPath := filepath.Join(iconsDir, "linux.png")
	if err := os.WriteFile(iconPath, []byte("png"), 0o644); err != nil {
		t.Fatalf("write icon: %v", err)
	}

	rd := &fakeRender{}
	st := newMemStore()
	uc := NewPathsUseCase(
		cat, rd, st, newScriptedGenerator(0),
		t.TempDir(), iconsDir, "-interview-questions", "%s Interview Questions",
		nil, nopLogger(),
	)

	tally, err := uc.GeneratePathCovers(ctx, []string{"en", "zh"}, false, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// linux renders per language, devops has no icon and is skipped.
	if tally.Rendered != 2 || tally.Skipped != 2 || tally.Failed != 0 {
		t.Fatalf("unexpected tally: %+v", tally)
	}

	cfg, ok := st.Get(ctx, "linux-interview-questions")
	if !ok {
		t.Fatalf("expected visual config under the derived alias")
	}
	if cfg.ImageURL != iconPath {
		t.Fatalf("expected local icon path %q, got %q", iconPath, cfg.ImageURL)
	}
	if got := rd.specs[0].CourseName; got != "Linux Interview Questions" {
		t.Fatalf("expected templated name, got %q", got)
	}
}
