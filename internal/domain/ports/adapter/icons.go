package adapter

import (
	"context"

	"course-cover-generator/internal/domain/model"
)

// IconSearchAdapter resolves a search term to an icon reference.
//
// Resolve retries transient failures in place with exponential backoff and
// degrades to a default reference instead of returning an error; the only
// error it reports is context cancellation. Download persists a reference
// locally and is idempotent per alias; on any failure it hands back the
// remote URL unchanged rather than failing the caller.
type IconSearchAdapter interface {
	Resolve(ctx context.Context, term string) (model.IconRef, error)
	Download(ctx context.Context, ref model.IconRef, alias string) string
}
