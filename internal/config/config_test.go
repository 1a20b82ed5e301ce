package config

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/cellstore/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Inspector.Port != DefaultPort {
		t.Errorf("Inspector.Port = %d, want %d", cfg.Inspector.Port, DefaultPort)
	}
	if cfg.Inspector.Host != DefaultHost {
		t.Errorf("Inspector.Host = %q, want %q", cfg.Inspector.Host, DefaultHost)
	}
	if cfg.Inspector.EventBuffer != DefaultEventBuffer {
		t.Errorf("Inspector.EventBuffer = %d, want %d", cfg.Inspector.EventBuffer, DefaultEventBuffer)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should default to false")
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Address() != "localhost:7070" {
		t.Errorf("Address() = %q, want localhost:7070", cfg.Address())
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configJSON := `{
  "inspector": {
    "host": "0.0.0.0",
    "port": 9000,
    "allowedOrigins": ["http://localhost:3000"]
  },
  "metrics": {"namespace": "app"},
  "log": {"level": "debug", "format": "json"}
}
`
	path := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(path, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Address() != "0.0.0.0:9000" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.Metrics.Namespace != "app" {
		t.Errorf("Metrics.Namespace = %q, want app", cfg.Metrics.Namespace)
	}
	if len(cfg.Inspector.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", cfg.Inspector.AllowedOrigins)
	}
	// Unset fields keep their defaults.
	if cfg.Inspector.ClientQueue != DefaultClientQueue {
		t.Errorf("ClientQueue = %d, want %d", cfg.Inspector.ClientQueue, DefaultClientQueue)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `inspector:
  port: 7171
  eventBuffer: 32
tracing:
  enabled: true
  tracerName: demo
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Inspector.Port != 7171 {
		t.Errorf("Port = %d, want 7171", cfg.Inspector.Port)
	}
	if cfg.Inspector.EventBuffer != 32 {
		t.Errorf("EventBuffer = %d, want 32", cfg.Inspector.EventBuffer)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != "demo" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(`{"inspector":{"port":1111}}`), 0644)
	os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte("inspector:\n  port: 2222\n"), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Inspector.Port != 1111 {
		t.Errorf("Port = %d, want 1111", cfg.Inspector.Port)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadFile(filepath.Join(tmpDir, "missing.json"))
	assertCode(t, err, "E401")

	bad := filepath.Join(tmpDir, ConfigFileName)
	os.WriteFile(bad, []byte("{not json"), 0644)
	_, err = LoadFile(bad)
	assertCode(t, err, "E401")

	invalid := filepath.Join(tmpDir, "invalid.yaml")
	os.WriteFile(invalid, []byte("inspector:\n  port: 70000\n"), 0644)
	_, err = LoadFile(invalid)
	assertCode(t, err, "E402")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative port", func(c *Config) { c.Inspector.Port = -1 }, true},
		{"negative buffer", func(c *Config) { c.Inspector.EventBuffer = -5 }, true},
		{"negative queue", func(c *Config) { c.Inspector.ClientQueue = -1 }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"warning level", func(c *Config) { c.Log.Level = "WARNING" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "cell", "count")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, `"cell":"count"`) {
		t.Errorf("expected JSON record, got %s", out)
	}
}

func TestURL(t *testing.T) {
	cfg := New()
	cfg.Inspector.Port = 8088
	if got := cfg.URL(); got != "http://localhost:8088" {
		t.Errorf("URL() = %q", got)
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var ce *errors.CellError
	if !stderrors.As(err, &ce) {
		t.Fatalf("error %v is not a *CellError", err)
	}
	if ce.Code != code {
		t.Errorf("Code = %s, want %s", ce.Code, code)
	}
}
