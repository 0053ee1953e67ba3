// Package server exposes the Graphviz backend over HTTP.
//
// # Endpoints
//
//	POST /v1/pipe?engine=&format=&renderer=&formatter=   DOT body, rendered output
//	POST /v1/unflatten?stagger=&fanout=&chain=            DOT body, unflattened DOT
//	GET  /v1/version                                      installed Graphviz version
//	GET  /v1/capabilities                                 engines, formats, renderers, formatters
//	GET  /v1/history?limit=                               recent runs, newest first
//	GET  /healthz
//
// Engine and format default to the server's *backend.Defaults. Failures are
// returned as JSON {"code": ..., "message": ...} with a status derived from
// the error code. Every response carries an X-Request-ID header.
//
// Pipe output is cached by command and input, so repeated requests for the
// same graph do not start a subprocess.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dotpipe/pkg/backend"
	"github.com/matzehuels/dotpipe/pkg/cache"
	"github.com/matzehuels/dotpipe/pkg/history"
)

// Backend is the subset of *backend.Client the server calls.
type Backend interface {
	Command(req backend.Request) (backend.Command, error)
	Pipe(ctx context.Context, req backend.Request, data []byte, opts ...backend.CallOption) ([]byte, error)
	Unflatten(ctx context.Context, source string, opts backend.UnflattenOptions, encoding string, callOpts ...backend.CallOption) (string, error)
	Version(ctx context.Context) (backend.Version, error)
}

var _ Backend = (*backend.Client)(nil)

// Options configures a Server. Zero values select the defaults noted on
// each field.
type Options struct {
	Logger   *log.Logger       // log.Default()
	Defaults *backend.Defaults // dot / pdf
	Cache    cache.Cache       // no caching
	Keyer    cache.Keyer       // cache.NewDefaultKeyer()
	CacheTTL time.Duration     // no expiry
	History  history.Store     // in-memory, history.DefaultCapacity records

	// MaxBodySize bounds request bodies. Defaults to DefaultMaxBodySize.
	MaxBodySize int64

	// Timeout bounds each subprocess. Zero means no limit beyond the
	// client disconnecting.
	Timeout time.Duration
}

// DefaultMaxBodySize is the request body limit when none is configured.
const DefaultMaxBodySize = 10 << 20

// Server serves the HTTP API.
type Server struct {
	backend Backend
	opts    Options
	router  chi.Router
}

// New creates a server that renders with b.
func New(b Backend, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Defaults == nil {
		opts.Defaults = backend.NewDefaults()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.History == nil {
		opts.History = history.NewMemoryStore(history.DefaultCapacity)
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}

	s := &Server{backend: b, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(serverHeader)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/pipe", s.handlePipe)
		r.Post("/unflatten", s.handleUnflatten)
		r.Get("/version", s.handleVersion)
		r.Get("/capabilities", s.handleCapabilities)
		r.Get("/history", s.handleHistory)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, waiting up to 10 seconds for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close releases the cache and history store.
func (s *Server) Close(ctx context.Context) error {
	cerr := s.opts.Cache.Close()
	herr := s.opts.History.Close(ctx)
	if cerr != nil {
		return cerr
	}
	return herr
}
