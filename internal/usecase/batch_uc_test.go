package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"course-cover-generator/internal/domain/model"
)

// scriptedGenerator fails each item a fixed number of times before
// succeeding, or returns a fixed terminal outcome per item.
type scriptedGenerator struct {
	mu        sync.Mutex
	failFirst int
	calls     map[model.WorkItem]int
	terminal  map[model.WorkItem]model.OutcomeKind
}

func newScriptedGenerator(failFirst int) *scriptedGenerator {
	return &scriptedGenerator{
		failFirst: failFirst,
		calls:     map[model.WorkItem]int{},
		terminal:  map[model.WorkItem]model.OutcomeKind{},
	}
}

func (g *scriptedGenerator) Generate(ctx context.Context, item model.WorkItem, meta *model.CourseMetadata, overwrite bool) model.Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[item]++
	if kind, ok := g.terminal[item]; ok {
		switch kind {
		case model.OutcomeNotFound:
			return model.NotFound(item)
		default:
			return model.Failed(item, "connection reset")
		}
	}
	if g.calls[item] <= g.failFirst {
		return model.Failed(item, "connection reset")
	}
	return model.Rendered(item)
}

func (g *scriptedGenerator) callCount(item model.WorkItem) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[item]
}

func newTestBatch(gen CoverGenerator, st *memStore, maxRetries int, cleanup bool) *BatchUseCase {
	return NewBatchUseCase(gen, st, 2, maxRetries, time.Millisecond, false, cleanup, nopLogger())
}

func TestBatchUC_RetryBound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	item := model.WorkItem{Course: "flaky", Lang: "en"}

	// Fails twice, succeeds on the third call: 3 passes reach success.
	gen := newScriptedGenerator(2)
	res, err := newTestBatch(gen, newMemStore(), 3, false).Run(ctx, []model.WorkItem{item})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Succeeded) != 1 || len(res.Failed) != 0 {
		t.Fatalf("max_retries=3: expected success, got %d ok / %d failed", len(res.Succeeded), len(res.Failed))
	}
	if got := gen.callCount(item); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}

	// Same failure pattern with only 2 passes stays failed.
	gen = newScriptedGenerator(2)
	res, err = newTestBatch(gen, newMemStore(), 2, false).Run(ctx, []model.WorkItem{item})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Succeeded) != 0 || len(res.Failed) != 1 {
		t.Fatalf("max_retries=2: expected failure, got %d ok / %d failed", len(res.Succeeded), len(res.Failed))
	}
	if res.Failed[0].Reason == "" {
		t.Fatalf("expected itemized failure reason")
	}
}

func TestBatchUC_StopsEarlyWhenNothingPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	item := model.WorkItem{Course: "steady", Lang: "en"}
	gen := newScriptedGenerator(0)

	res, err := newTestBatch(gen, newMemStore(), 5, false).Run(ctx, []model.WorkItem{item})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Succeeded) != 1 {
		t.Fatalf("expected success, got %+v", res)
	}
	if got := gen.callCount(item); got != 1 {
		t.Fatalf("expected a single pass, got %d attempts", got)
	}
}

func TestBatchUC_CleanupRemovesOnlyMissingCourses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ghost := model.WorkItem{Course: "ghost-course", Lang: "en"}
	flaky := model.WorkItem{Course: "flaky-course", Lang: "en"}

	gen := newScriptedGenerator(0)
	gen.terminal[ghost] = model.OutcomeNotFound
	gen.terminal[flaky] = model.OutcomeFailed

	st := newMemStore()
	now := time.Now()
	for _, alias := range []string{"ghost-course", "flaky-course", "healthy-course"} {
		_ = st.Set(ctx, alias, &model.VisualConfig{ImageURL: "x", BgColor: "ffffff", CreatedAt: now})
	}

	if _, err := newTestBatch(gen, st, 1, true).Run(ctx, []model.WorkItem{ghost, flaky}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, ok := st.Get(ctx, "ghost-course"); ok {
		t.Fatalf("expected ghost-course pruned from cache")
	}
	if _, ok := st.Get(ctx, "flaky-course"); !ok {
		t.Fatalf("transient failure must never be pruned")
	}
	if _, ok := st.Get(ctx, "healthy-course"); !ok {
		t.Fatalf("unrelated key must survive cleanup")
	}
}

// stallingGenerator signals when its first item starts, then blocks every
// call until the context is cancelled.
type stallingGenerator struct {
	started chan struct{}
	once    sync.Once
}

func (g *stallingGenerator) Generate(ctx context.Context, item model.WorkItem, meta *model.CourseMetadata, overwrite bool) model.Outcome {
	g.once.Do(func() { close(g.started) })
	<-ctx.Done()
	return model.Failed(item, ctx.Err().Error())
}

func TestBatchUC_CancellationMidPassDoesNotHang(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One worker and more items than the pool can buffer, so at
	// cancellation time some items are queued and some not yet dispatched.
	items := make([]model.WorkItem, 8)
	for i := range items {
		items[i] = model.WorkItem{Course: fmt.Sprintf("course-%d", i), Lang: "en"}
	}
	gen := &stallingGenerator{started: make(chan struct{})}
	batch := NewBatchUseCase(gen, newMemStore(), 1, 3, time.Minute, false, false, nopLogger())

	var (
		res    *BatchResult
		runErr error
	)
	done := make(chan struct{})
	go func() {
		res, runErr = batch.Run(ctx, items)
		close(done)
	}()

	<-gen.started
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancellation")
	}

	if !errors.Is(runErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", runErr)
	}
	if got := len(res.Succeeded) + len(res.Failed); got != len(items) {
		t.Fatalf("expected one outcome per item, got %d of %d", got, len(items))
	}
	seen := map[model.WorkItem]bool{}
	for _, o := range append(append([]model.Outcome{}, res.Succeeded...), res.Failed...) {
		seen[o.Item] = true
	}
	for _, item := range items {
		if !seen[item] {
			t.Fatalf("item %s has no outcome", item)
		}
	}
}

// End-to-end over the real single-item generator with faked collaborators.
func TestBatchUC_EndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cat := &fakeCatalog{courses: map[string]*model.CourseMetadata{
		"bash-basics": {Name: "Bash Basics", Langs: []string{"en"}},
	}}
	ic := &fakeIcons{ref: model.IconRef{URL: "https://img/bash.png"}}
	rd := &fakeRender{}
	st := newMemStore()
	coverUC := NewCoverUseCase(cat, ic, rd, st, t.TempDir(), "", nopLogger())
	batch := NewBatchUseCase(coverUC, st, 2, 1, time.Millisecond, false, false, nopLogger())

	items := []model.WorkItem{
		{Course: "bash-basics", Lang: "en"},
		{Course: "ghost-course", Lang: "en"},
	}
	res, err := batch.Run(ctx, items)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(res.Succeeded) != 1 || res.Succeeded[0].Item != items[0] {
		t.Fatalf("expected exactly bash-basics/en to succeed, got %+v", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].Item != items[1] || res.Failed[0].Kind != model.OutcomeNotFound {
		t.Fatalf("expected ghost-course/en in failure list, got %+v", res.Failed)
	}
	if res.Failed[0].Reason != "course not found" {
		t.Fatalf("expected reason %q, got %q", "course not found", res.Failed[0].Reason)
	}
	if keys := st.Keys(ctx); len(keys) != 1 || keys[0] != "bash-basics" {
		t.Fatalf("expected exactly one new cache key bash-basics, got %v", keys)
	}
}
