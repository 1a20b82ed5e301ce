package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	cserrors "github.com/vango-dev/cellstore/internal/errors"
	"github.com/vango-dev/cellstore/pkg/store"
)

func TestVersionShort(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version output = %q, want %q", got, version)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "cellstore.yaml"), []byte("inspector:\n  port: 7171\n"), 0644)

	cfg, err := loadConfig(inspectOptions{dir: dir, host: "0.0.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address() != "0.0.0.0:7171" {
		t.Errorf("Address() = %q", cfg.Address())
	}

	cfg, err = loadConfig(inspectOptions{dir: dir, port: 9001})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Inspector.Port != 9001 {
		t.Errorf("Port = %d, want 9001", cfg.Inspector.Port)
	}

	if _, err := loadConfig(inspectOptions{file: filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestRunDemo(t *testing.T) {
	reg := store.NewRegistry("demo")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runDemo(ctx, reg, 5*time.Millisecond)
		close(done)
	}()

	ticker := store.GetOrCreate[*Ticker](reg)
	deadline := time.Now().Add(2 * time.Second)
	for ticker.Count.Peek() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if n := ticker.Count.Peek(); n < 3 {
		t.Fatalf("Count = %d, want at least 3", n)
	}
	if ticker.Running.Peek() {
		t.Error("Running should be false after the demo stops")
	}
	if ticker.Count.SubscriberCount() != 0 {
		t.Error("demo subscriber should be removed")
	}
	if h := ticker.History.Peek(); len(h) == 0 || h[len(h)-1] != ticker.Count.Peek() {
		t.Errorf("History = %v, last should match Count", h)
	}
}

func TestLogSpanProcessor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(newLogSpanProcessor(logger)))
	defer provider.Shutdown(context.Background())

	_, span := provider.Tracer("test").Start(context.Background(), "cellstore.notify count")
	span.End()

	if !strings.Contains(buf.String(), `span="cellstore.notify count"`) {
		t.Errorf("log output = %s", buf.String())
	}
}

func TestRunReturnsCodedConfigError(t *testing.T) {
	defer cserrors.EnableColors()

	missing := filepath.Join(t.TempDir(), "missing.json")
	err := run([]string{"inspect", "--no-color", "--config", missing})
	var ce *cserrors.CellError
	if !errors.As(err, &ce) {
		t.Fatalf("run() error = %v, want a *CellError", err)
	}
	if ce.Code != "E401" {
		t.Errorf("Code = %s, want E401", ce.Code)
	}

	var buf bytes.Buffer
	cserrors.FprintError(&buf, err)
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("--no-color output still has ANSI codes: %q", buf.String())
	}
}

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
