package adapter

import "context"

// RenderSpec is the fixed parameter set the cover template accepts.
type RenderSpec struct {
	CourseType string
	CourseName string
	ImageURL   string
	BgColor    string
	Lang       string
	Status     string // optional corner label, e.g. "project"
}

// RenderAdapter turns a RenderSpec into a bitmap at outPath. Implementations
// are stateless and idempotent per call.
type RenderAdapter interface {
	Render(ctx context.Context, spec RenderSpec, outPath string) error
}
