package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
output:
  dir: out/covers
store:
  path: course-covers.json
`

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Catalog.BaseURL != "https://labex.io/api/v2" {
		t.Errorf("catalog base url default: %q", cfg.Catalog.BaseURL)
	}
	if cfg.Icons.MaxAttempts != 3 || cfg.Icons.BaseDelay != time.Second {
		t.Errorf("icon retry defaults: attempts=%d delay=%s", cfg.Icons.MaxAttempts, cfg.Icons.BaseDelay)
	}
	if cfg.Icons.DefaultEmpty == cfg.Icons.DefaultRetry {
		t.Errorf("the two fallback icon urls must differ")
	}
	if cfg.Render.ViewportWidth != 1600 || cfg.Render.ClipWidth != 1400 {
		t.Errorf("render geometry defaults: %+v", cfg.Render)
	}
	if cfg.Batch.Workers != 4 || cfg.Batch.MaxRetries != 3 || cfg.Batch.RetryDelay != 5*time.Second {
		t.Errorf("batch defaults: %+v", cfg.Batch)
	}
	if cfg.Paths.NameTemplate != "%s Interview Questions" {
		t.Errorf("paths name template default: %q", cfg.Paths.NameTemplate)
	}
	if len(cfg.Paths.Exclude) != 1 || cfg.Paths.Exclude[0] != "alibaba" {
		t.Errorf("paths exclude default: %v", cfg.Paths.Exclude)
	}
	if cfg.Runtime.Dev {
		t.Errorf("dev flag must stay off unless requested")
	}
}

func TestLoadConfig_ExplicitValuesWin(t *testing.T) {
	body := minimalYAML + `
batch:
  workers: 9
  max_retries: 1
icons:
  max_attempts: 5
  base_delay: 250ms
`
	cfg, err := LoadConfig(writeConfig(t, body), true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Batch.Workers != 9 || cfg.Batch.MaxRetries != 1 {
		t.Fatalf("explicit batch values overridden: %+v", cfg.Batch)
	}
	if cfg.Icons.MaxAttempts != 5 || cfg.Icons.BaseDelay != 250*time.Millisecond {
		t.Fatalf("explicit icon values overridden: attempts=%d delay=%s", cfg.Icons.MaxAttempts, cfg.Icons.BaseDelay)
	}
	if !cfg.Runtime.Dev {
		t.Fatalf("dev flag not propagated")
	}
}

func TestLoadConfig_RequiredFields(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "store:\n  path: x.json\n"), false); err == nil {
		t.Fatalf("expected error for missing output.dir")
	}
	if _, err := LoadConfig(writeConfig(t, "output:\n  dir: out\n"), false); err == nil {
		t.Fatalf("expected error for missing store.path")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "output: [not a mapping"), false); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestLoadConfig_APIKeyEnvFallback(t *testing.T) {
	t.Setenv("FREEPIK_API_KEY", "from-env")

	cfg, err := LoadConfig(writeConfig(t, minimalYAML), false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Icons.APIKey != "from-env" {
		t.Fatalf("expected env fallback, got %q", cfg.Icons.APIKey)
	}

	// An explicit key beats the environment.
	cfg, err = LoadConfig(writeConfig(t, minimalYAML+"icons:\n  api_key: from-file\n"), false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Icons.APIKey != "from-file" {
		t.Fatalf("expected file key to win, got %q", cfg.Icons.APIKey)
	}
}
