package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cserrors "github.com/vango-dev/cellstore/internal/errors"
	"github.com/vango-dev/cellstore/pkg/store"
)

// Config holds inspector server settings.
type Config struct {
	// Address is the listen address. Default: "localhost:7070".
	Address string

	// Manager supplies the registries listed under /stores.
	// Default: store.Contexts().
	Manager *store.Manager

	// Hub supplies /events and /ws. Default: a fresh hub.
	Hub *Hub

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Logger is used for server and request logs.
	Logger *slog.Logger

	// ShutdownTimeout bounds graceful shutdown. Default: 5s.
	ShutdownTimeout time.Duration
}

// Option configures the inspector server.
type Option func(*Config)

// WithAddress sets the listen address.
func WithAddress(addr string) Option {
	return func(c *Config) { c.Address = addr }
}

// WithManager sets the context manager listed under /stores.
func WithManager(m *store.Manager) Option {
	return func(c *Config) { c.Manager = m }
}

// WithHub sets the event hub.
func WithHub(h *Hub) Option {
	return func(c *Config) { c.Hub = h }
}

// WithGatherer enables /metrics backed by g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *Config) { c.Gatherer = g }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithShutdownTimeout sets the graceful shutdown bound.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) { c.ShutdownTimeout = d }
}

// Server is the inspector HTTP server.
type Server struct {
	config Config
	router chi.Router
	logger *slog.Logger
}

// NewServer creates an inspector server.
func NewServer(opts ...Option) *Server {
	cfg := Config{
		Address:         "localhost:7070",
		ShutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Manager == nil {
		cfg.Manager = store.Contexts()
	}
	if cfg.Hub == nil {
		cfg.Hub = NewHub(WithHubLogger(cfg.Logger))
	}

	s := &Server{config: cfg, logger: cfg.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/stores", s.handleStores)
	r.Get("/stores/{context}", s.handleContext)
	r.Get("/events", s.handleEvents)
	r.Get("/ws", s.config.Hub.HandleWebSocket)
	if s.config.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("inspector request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the server's event hub.
func (s *Server) Hub() *Hub {
	return s.config.Hub
}

// ContextInfo describes one registry.
type ContextInfo struct {
	Name    string   `json:"name"`
	Current bool     `json:"current"`
	Count   int      `json:"count"`
	Stores  []string `json:"stores"`
}

func (s *Server) contextInfo(name string) (ContextInfo, bool) {
	reg, ok := s.config.Manager.Context(name)
	if !ok {
		return ContextInfo{}, false
	}
	stores := reg.Types()
	return ContextInfo{
		Name:    name,
		Current: name == s.config.Manager.CurrentName(),
		Count:   len(stores),
		Stores:  stores,
	}, true
}

func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	names := s.config.Manager.Names()
	out := struct {
		Current  string        `json:"current"`
		Contexts []ContextInfo `json:"contexts"`
	}{
		Current:  s.config.Manager.CurrentName(),
		Contexts: make([]ContextInfo, 0, len(names)),
	}
	for _, name := range names {
		if info, ok := s.contextInfo(name); ok {
			out.Contexts = append(out.Contexts, info)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "context")
	info, ok := s.contextInfo(name)
	if !ok {
		err := cserrors.New("E302").WithStore(name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(err.FormatJSON()))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.config.Hub.Recent(limit))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return cserrors.New("E501").
			WithDetail("Cannot listen on " + s.config.Address).
			Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector starting", "address", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("inspector shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		s.config.Hub.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		s.logger.Info("inspector shutdown complete")
		return nil
	}
}

// AllowOrigins returns a websocket origin check that accepts requests with
// no Origin header or an Origin in allowed. An empty list accepts everything.
func AllowOrigins(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
