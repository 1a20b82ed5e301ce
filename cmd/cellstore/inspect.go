package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/cellstore/internal/config"
	"github.com/vango-dev/cellstore/pkg/devtools"
	"github.com/vango-dev/cellstore/pkg/metrics"
	"github.com/vango-dev/cellstore/pkg/reactive"
	"github.com/vango-dev/cellstore/pkg/store"
	"github.com/vango-dev/cellstore/pkg/tracing"
)

type inspectOptions struct {
	dir      string
	file     string
	port     int
	host     string
	demo     bool
	interval time.Duration
}

func inspectCmd() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Start the inspector server",
		Long: `Start the inspector server.

Configuration is read from cellstore.json or cellstore.yaml in the
current directory. Flags override the file.

Examples:
  cellstore inspect
  cellstore inspect --port=9000
  cellstore inspect --demo --interval=500ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runInspect(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Directory containing the config file")
	cmd.Flags().StringVarP(&opts.file, "config", "c", "", "Config file path (overrides --dir)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "Populate the default registry with a ticking demo store")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "Demo tick interval")

	return cmd
}

func loadConfig(opts inspectOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.file != "" {
		cfg, err = config.LoadFile(opts.file)
	} else {
		cfg, err = config.Load(opts.dir)
	}
	if err != nil {
		return nil, err
	}

	if opts.port > 0 {
		cfg.Inspector.Port = opts.port
	}
	if opts.host != "" {
		cfg.Inspector.Host = opts.host
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runInspect(ctx context.Context, opts inspectOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := cfg.Logger(os.Stderr)
	reactive.SetLogger(logger)

	hub := devtools.NewHub(
		devtools.WithEventBuffer(cfg.Inspector.EventBuffer),
		devtools.WithClientQueue(cfg.Inspector.ClientQueue),
		devtools.WithHubLogger(logger),
		devtools.WithCheckOrigin(devtools.AllowOrigins(cfg.Inspector.AllowedOrigins)),
	)

	instruments := []reactive.Instrumentation{hub}
	hooks := []store.Hooks{hub}
	serverOpts := []devtools.Option{
		devtools.WithAddress(cfg.Address()),
		devtools.WithHub(hub),
		devtools.WithManager(store.Contexts()),
		devtools.WithLogger(logger),
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector := metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		instruments = append(instruments, collector)
		hooks = append(hooks, collector)
		serverOpts = append(serverOpts, devtools.WithGatherer(reg))
	}

	if cfg.Tracing.Enabled {
		provider := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(newLogSpanProcessor(logger)),
		)
		defer provider.Shutdown(context.Background())
		instruments = append(instruments, tracing.New(
			tracing.WithTracerName(cfg.Tracing.TracerName),
			tracing.WithTracerProvider(provider),
		))
	}

	reactive.SetInstrumentation(reactive.Multi(instruments...))
	store.SetHooks(store.MultiHooks(hooks...))
	defer reactive.SetInstrumentation(nil)
	defer store.SetHooks(nil)

	if opts.demo {
		go runDemo(ctx, store.Default(), opts.interval)
		info("Demo store %q ticking every %s", "ticker", opts.interval)
	}

	success("Inspector listening on %s", cfg.URL())
	logger.Info("inspector configured",
		"address", cfg.Address(),
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.Enabled,
		"config", cfg.Path(),
	)

	return devtools.NewServer(serverOpts...).ListenAndServe(ctx)
}

// logSpanProcessor writes ended spans to the logger at debug level.
type logSpanProcessor struct {
	logger *slog.Logger
}

func newLogSpanProcessor(logger *slog.Logger) sdktrace.SpanProcessor {
	return &logSpanProcessor{logger: logger}
}

func (p *logSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := []any{
		"span", s.Name(),
		"duration", s.EndTime().Sub(s.StartTime()),
		"trace_id", s.SpanContext().TraceID().String(),
	}
	for _, kv := range s.Attributes() {
		attrs = append(attrs, string(kv.Key), kv.Value.Emit())
	}
	p.logger.Debug("span", attrs...)
}

func (p *logSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *logSpanProcessor) ForceFlush(context.Context) error { return nil }
