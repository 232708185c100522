package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/mutate/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if !cfg.Dedupe.Insertion || !cfg.Dedupe.Removal {
		t.Error("insertion and removal dedupe should default to on")
	}
	if cfg.Dedupe.Attribute {
		t.Error("attribute dedupe should default to off")
	}
	if cfg.Capability.Native {
		t.Error("native capability should default to off")
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Tracing.TracerName != DefaultTracerName {
		t.Errorf("Tracing.TracerName = %q, want %q", cfg.Tracing.TracerName, DefaultTracerName)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want %v", cfg.SlogLevel(), slog.LevelInfo)
	}
	if cfg.Path() != "" || cfg.Dir() != "" {
		t.Errorf("Path() = %q, Dir() = %q, want both empty", cfg.Path(), cfg.Dir())
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.Is(err, errors.New(errors.CodeConfigNotFound)) {
		t.Fatalf("Load(empty dir) error = %v, want %s", err, errors.CodeConfigNotFound)
	}

	configJSON := `{
  "capability": {"native": true},
  "dedupe": {"removal": false, "attribute": true},
  "metrics": {"enabled": true, "subsystem": "bench"},
  "log": {"level": "debug"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if !cfg.Capability.Native {
		t.Error("Capability.Native should be true")
	}
	if !cfg.Dedupe.Insertion {
		t.Error("Dedupe.Insertion should keep its default")
	}
	if cfg.Dedupe.Removal {
		t.Error("Dedupe.Removal should be false")
	}
	if !cfg.Dedupe.Attribute {
		t.Error("Dedupe.Attribute should be true")
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Subsystem != "bench" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `capability:
  native: true
dedupe:
  insertion: false
tracing:
  tracerName: bench
`
	path := filepath.Join(tmpDir, "mutate.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Capability.Native {
		t.Error("Capability.Native should be true")
	}
	if cfg.Dedupe.Insertion {
		t.Error("Dedupe.Insertion should be false")
	}
	if !cfg.Dedupe.Removal {
		t.Error("Dedupe.Removal should keep its default")
	}
	if cfg.Tracing.TracerName != "bench" {
		t.Errorf("Tracing.TracerName = %q, want bench", cfg.Tracing.TracerName)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}

	direct, err := Load(path)
	if err != nil {
		t.Fatalf("Load(file) error: %v", err)
	}
	if direct.Capability != cfg.Capability {
		t.Errorf("Load(file).Capability = %+v, want %+v", direct.Capability, cfg.Capability)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    string
	}{
		{"bad json", "mutate.json", `{"capability": `, errors.CodeConfigParse},
		{"bad yaml", "mutate.yml", "capability: [", errors.CodeConfigParse},
		{"bad level", "mutate.json", `{"log": {"level": "loud"}}`, errors.CodeConfigInvalid},
		{"bad namespace", "mutate.json", `{"metrics": {"namespace": "my-app"}}`, errors.CodeConfigInvalid},
		{"bad subsystem", "mutate.json", `{"metrics": {"subsystem": "1st"}}`, errors.CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if got := errors.CodeOf(err); got != tt.code {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if got := errors.CodeOf(err); got != errors.CodeConfigNotFound {
		t.Errorf("Load(missing) error = %v, want code %s", err, errors.CodeConfigNotFound)
	}
}

func TestParseErrorKeepsCause(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"capability": `), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	e := errors.FromError(err, errors.CodeConfigInvalid)
	if e.Wrapped == nil {
		t.Fatal("parse error should wrap the decoder error")
	}
	if !strings.HasPrefix(err.Error(), "M041: Configuration file could not be parsed: ") {
		t.Errorf("Error() = %q, should carry the decoder error", err.Error())
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := New()
	cfg.Capability.Native = true
	cfg.Metrics.Subsystem = "bench"
	for _, name := range []string{ConfigFileName, "mutate.yaml"} {
		path := filepath.Join(tmpDir, name)
		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo(%s) error: %v", name, err)
		}
		if cfg.Path() != path {
			t.Errorf("Path() = %q, want %q", cfg.Path(), path)
		}

		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", name, err)
		}
		if loaded.Capability != cfg.Capability || loaded.Metrics != cfg.Metrics || loaded.Dedupe != cfg.Dedupe {
			t.Errorf("Load(%s) = %+v, want %+v", name, loaded, cfg)
		}
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ConfigFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Error("JSON config should end with a newline")
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nested); errors.CodeOf(err) != errors.CodeConfigNotFound {
		t.Errorf("FindProjectRoot() error = %v, want %s", err, errors.CodeConfigNotFound)
	}

	if err := New().SaveTo(filepath.Join(tmpDir, "mutate.yml")); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists(root) should be true")
	}
	if Exists(nested) {
		t.Error("Exists(nested) should be false")
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("FindProjectRoot() = %q, want %q", root, tmpDir)
	}
}

// watchFile runs Watch on a fresh config file and rewrites it with content(n)
// on every tick until until returns true or the deadline passes.
func watchFile(t *testing.T, logger *slog.Logger, content func(n int) string, until func(*Config) bool) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := New().SaveTo(path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan *Config, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) { reloads <- cfg }, WithLogger(logger))
	}()

	// The watch is registered asynchronously; keep rewriting until the
	// expected reload arrives.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for n := 0; ; n++ {
		select {
		case cfg := <-reloads:
			if !until(cfg) {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch() error = %v", err)
			}
			return
		case <-ticker.C:
			if err := os.WriteFile(path, []byte(content(n)), 0644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatch(t *testing.T) {
	watchFile(t, slog.Default(),
		func(int) string { return `{"capability": {"native": true}}` },
		func(cfg *Config) bool {
			if !cfg.Capability.Native {
				t.Error("reloaded config should enable native capability")
			}
			return true
		})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchDropsInvalidReload(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	watchFile(t, logger,
		func(int) string {
			if !strings.Contains(logs.String(), "config reload dropped") {
				return `{"capability": {"native": true}, "dedupe": `
			}
			return `{"log": {"level": "warn"}}`
		},
		func(cfg *Config) bool {
			if cfg.Capability.Native {
				t.Error("an invalid file should never be delivered")
			}
			return cfg.Log.Level == "warn"
		})

	out := logs.String()
	if !strings.Contains(out, "code=M041") {
		t.Errorf("log should carry the error code, got:\n%s", out)
	}
	if strings.Contains(out, "unexpected end of JSON input") {
		t.Errorf("log should redact the decoder error, got:\n%s", out)
	}
}
