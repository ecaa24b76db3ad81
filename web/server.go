// ABOUTME: sketchpad HTTP server: the root page handler and the static asset mount behind one chi router.
// ABOUTME: Owns middleware ordering, JSON fallbacks for unknown routes, and graceful shutdown.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/2389-research/sketchpad/assets"
	"github.com/2389-research/sketchpad/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Server serves GET / from the index file and GET <prefix>/* from the static directory.
type Server struct {
	router    chi.Router
	addr      string
	indexFile string
	static    *assets.Mount
	log       logrus.FieldLogger
	metrics   *metrics.Collectors
	timeouts  Timeouts
}

// Timeouts bounds how long the server spends on slow clients and on shutdown.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
	Shutdown   time.Duration
}

// ServerConfig holds the configuration for the web server.
type ServerConfig struct {
	Addr         string // listen address (default: "0.0.0.0:8000")
	IndexFile    string // path of the HTML file served on /
	StaticDir    string // directory mounted under StaticPrefix
	StaticPrefix string // URL prefix for static assets (default: "/static")
	Timeouts     Timeouts

	Logger  logrus.FieldLogger  // defaults to the logrus standard logger
	Metrics *metrics.Collectors // nil disables request metrics
}

// NewServer creates a Server with the given configuration. The static
// directory must exist; the index file is only looked up per request.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:8000"
	}
	if cfg.IndexFile == "" {
		return nil, fmt.Errorf("IndexFile must not be empty")
	}
	if cfg.StaticPrefix == "" {
		cfg.StaticPrefix = "/static"
	}
	prefix := "/" + strings.Trim(cfg.StaticPrefix, "/")
	if prefix == "/" {
		return nil, fmt.Errorf("StaticPrefix must name a path segment, got %q", cfg.StaticPrefix)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	static, err := assets.NewMount(cfg.StaticDir,
		assets.WithErrorHandler(statusError),
		assets.WithLogger(cfg.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("mounting static assets: %w", err)
	}

	s := &Server{
		addr:      cfg.Addr,
		indexFile: cfg.IndexFile,
		static:    static,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		timeouts:  cfg.Timeouts,
	}
	s.router = s.buildRouter(prefix)
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Close releases the static directory handle. Call it once the server has
// stopped serving.
func (s *Server) Close() error {
	return s.static.Close()
}

// buildRouter constructs the chi router with both routes and middleware.
func (s *Server) buildRouter(prefix string) chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(webRequestLogger(s.log))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(middleware.Recoverer)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/", s.handleIndex)
	r.Head("/", s.handleIndex)

	static := http.StripPrefix(prefix, s.static)
	r.Handle(prefix, static)
	r.Handle(prefix+"/*", static)

	return r
}

// httpServer returns an http.Server for this handler with timeouts applied.
func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: s.timeouts.ReadHeader,
		ReadTimeout:       s.timeouts.Read,
		WriteTimeout:      s.timeouts.Write,
		IdleTimeout:       s.timeouts.Idle,
	}
}

// ListenAndServe listens on the configured address and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for up to the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := s.httpServer()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.WithField("addr", ln.Addr().String()).Info("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx := context.Background()
	if s.timeouts.Shutdown > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.timeouts.Shutdown)
		defer cancel()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
