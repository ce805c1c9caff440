// File: internal/infra/store/file_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/repository"
	"course-cover-generator/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ repository.AssetConfigRepository = (*FileStore)(nil)

// FileStore persists the alias -> VisualConfig mapping as one JSON document.
// Every write is a full load-merge-rewrite of the document, serialized
// through the store's mutex, so parallel workers sharing one FileStore
// cannot lose each other's updates. Keys are written in sorted order to keep
// diffs of the document reproducible.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  *zerolog.Logger
}

func NewFileStore(path string, logger *zerolog.Logger) *FileStore {
	l := logger.With().Str("component", "AssetStore").Logger()
	return &FileStore{path: path, log: &l}
}

// load reads the whole document. It fails open: a missing or corrupt file
// reads as an empty map, since losing the cache only costs re-resolution.
func (s *FileStore) load() map[string]*model.VisualConfig {
	configs := map[string]*model.VisualConfig{}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("cannot read asset document, treating as empty")
		}
		return configs
	}
	if err := json.Unmarshal(b, &configs); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("corrupt asset document, treating as empty")
		return map[string]*model.VisualConfig{}
	}
	return configs
}

func (s *FileStore) save(configs map[string]*model.VisualConfig) error {
	b, err := json.MarshalIndent(configs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal asset document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	if err := os.WriteFile(s.path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write asset document: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, alias string) (*model.VisualConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.load()[alias]
	if ok {
		metrics.IncCacheRequest("asset", "hit")
	} else {
		metrics.IncCacheRequest("asset", "miss")
	}
	return cfg, ok
}

// Set merges one key into the persisted document. The whole-document rewrite
// is the unit of atomicity.
func (s *FileStore) Set(ctx context.Context, alias string, cfg *model.VisualConfig) error {
	if alias == "" || cfg == nil {
		return fmt.Errorf("set %q: nil config or empty alias", alias)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	configs := s.load()
	configs[alias] = cfg
	if err := s.save(configs); err != nil {
		return err
	}
	s.log.Debug().Str("course", alias).Str("bg_color", cfg.BgColor).Msg("asset config stored")
	return nil
}

// Remove deletes the given keys in a single rewrite. Unknown keys are ignored.
func (s *FileStore) Remove(ctx context.Context, aliases []string) error {
	if len(aliases) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	configs := s.load()
	removed := 0
	for _, alias := range aliases {
		if _, ok := configs[alias]; ok {
			delete(configs, alias)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}
	if err := s.save(configs); err != nil {
		return err
	}
	s.log.Info().Int("removed", removed).Msg("asset configs pruned")
	return nil
}

func (s *FileStore) Keys(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	configs := s.load()
	keys := make([]string, 0, len(configs))
	for k := range configs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
