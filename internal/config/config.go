package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/cellstore/internal/errors"
)

const (
	// ConfigFileName is the JSON configuration file name.
	ConfigFileName = "cellstore.json"

	// YAMLConfigFileName is the YAML configuration file name.
	YAMLConfigFileName = "cellstore.yaml"

	// DefaultPort is the default inspector port.
	DefaultPort = 7070

	// DefaultHost is the default inspector host.
	DefaultHost = "localhost"

	// DefaultEventBuffer is how many recent events the inspector keeps.
	DefaultEventBuffer = 256

	// DefaultClientQueue is the per-client event queue length.
	DefaultClientQueue = 64
)

// Config represents the complete inspector configuration.
type Config struct {
	// Inspector contains devtools server settings.
	Inspector InspectorConfig `json:"inspector,omitempty" yaml:"inspector,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectorConfig contains devtools server settings.
type InspectorConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// EventBuffer is the number of recent events served by /events.
	EventBuffer int `json:"eventBuffer,omitempty" yaml:"eventBuffer,omitempty"`

	// ClientQueue is the per-websocket-client queue length. Events for a
	// client whose queue is full are dropped.
	ClientQueue int `json:"clientQueue,omitempty" yaml:"clientQueue,omitempty"`

	// AllowedOrigins restricts websocket origins. Empty allows all.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled records spans through the global tracer provider.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Inspector: InspectorConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			EventBuffer: DefaultEventBuffer,
			ClientQueue: DefaultClientQueue,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "cellstore",
		},
		Tracing: TracingConfig{
			TracerName: "cellstore",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// cellstore.json, then cellstore.yaml. If neither exists the defaults are
// returned.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension: .yaml and .yml are YAML, everything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E401").
			WithDetail("Cannot read " + path + ": " + err.Error()).
			Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E401").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON or YAML").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Inspector.Host == "" {
		c.Inspector.Host = DefaultHost
	}
	if c.Inspector.Port == 0 {
		c.Inspector.Port = DefaultPort
	}
	if c.Inspector.EventBuffer == 0 {
		c.Inspector.EventBuffer = DefaultEventBuffer
	}
	if c.Inspector.ClientQueue == 0 {
		c.Inspector.ClientQueue = DefaultClientQueue
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "cellstore"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "cellstore"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Inspector.Port < 0 || c.Inspector.Port > 65535 {
		return errors.New("E402").
			WithDetail("inspector.port must be between 0 and 65535")
	}
	if c.Inspector.EventBuffer < 0 {
		return errors.New("E402").
			WithDetail("inspector.eventBuffer must not be negative")
	}
	if c.Inspector.ClientQueue < 0 {
		return errors.New("E402").
			WithDetail("inspector.clientQueue must not be negative")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("E402").
			WithDetail("log.level must be one of debug, info, warn, error").
			WithSuggestion(`Use "info" for normal operation`)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E402").
			WithDetail(`log.format must be "text" or "json"`)
	}
	return nil
}

// Address returns the inspector listen address.
func (c *Config) Address() string {
	return c.Inspector.Host + ":" + strconv.Itoa(c.Inspector.Port)
}

// URL returns the inspector base URL.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// Logger builds a slog.Logger writing to w according to Log.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
