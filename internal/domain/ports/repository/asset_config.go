package repository

import (
	"context"

	"course-cover-generator/internal/domain/model"
)

// AssetConfigRepository is the durable course alias -> VisualConfig mapping.
//
// Get fails open: a missing or unreadable backing document reads as absent,
// never as an error, because losing the cache only costs a re-resolution.
// Set merges one key into the whole document; Remove drops a set of keys in
// a single rewrite. Implementations must serialize writes so concurrent
// workers cannot lose updates.
type AssetConfigRepository interface {
	Get(ctx context.Context, alias string) (*model.VisualConfig, bool)
	Set(ctx context.Context, alias string, cfg *model.VisualConfig) error
	Remove(ctx context.Context, aliases []string) error
	Keys(ctx context.Context) []string
}
