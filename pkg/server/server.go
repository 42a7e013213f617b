// Package server serves rendered graphs over HTTP.
//
// Every page request runs the full pipeline against the configured source,
// so the page always reflects the current description. Routes:
//
//	GET /graph_data      the description, verbatim from the source
//	GET /                interactive HTML page
//	GET /graph.svg       SVG drawing
//	GET /layout.json     positioned graph
//	GET /render/{format} any render format
//	GET /metrics         Prometheus metrics (when configured)
//	GET /healthz         liveness and build info
//
// Pipeline failures map to status codes: validation errors are 422, fetch
// errors 502, and layout errors 500.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/topovis/pkg/buildinfo"
	tverrors "github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/observability"
	"github.com/matzehuels/topovis/pkg/pipeline"
	"github.com/matzehuels/topovis/pkg/render"
)

// Timeouts for the HTTP server.
const (
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 5 * time.Second
)

// Options configures a [Server].
type Options struct {
	// Pipeline is passed to every run.
	Pipeline pipeline.Options

	// Metrics, when set, is served on /metrics.
	Metrics *observability.Metrics

	Logger *log.Logger
}

// Server renders the runner's source on request.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Pipeline.Logger == nil {
		opts.Pipeline.Logger = logger
	}
	s := &Server{runner: runner, opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph_data", s.handleGraphData)
	r.Get("/", s.handleFormat(render.FormatHTML))
	r.Get("/graph.svg", s.handleFormat(render.FormatSVG))
	r.Get("/layout.json", s.handleFormat(render.FormatJSON))
	r.Get("/render/{format}", s.handleRender)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleGraphData(w http.ResponseWriter, r *http.Request) {
	data, err := s.runner.Source.Raw(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	contentType := "application/json"
	if graph.FormatFromPath(s.runner.Source.String()) == graph.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleFormat(format)(w, r)
}

func (s *Server) handleFormat(format render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.runner.Run(r.Context(), s.opts.Pipeline)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		data, err := res.Render(r.Context(), format)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("X-Topovis-Run", res.RunID)
		_, _ = w.Write(data)
	}
}

// =============================================================================
// Errors
// =============================================================================

// errorBody is the JSON error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps a pipeline error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case tverrors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case tverrors.IsFetch(err):
		return http.StatusBadGateway
	case tverrors.IsLayout(err):
		return http.StatusInternalServerError
	case tverrors.Is(err, tverrors.ErrCodeInvalidFormat), tverrors.Is(err, tverrors.ErrCodeInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := tverrors.GetCode(err)
	if code == "" {
		code = tverrors.ErrCodeInternal
	}
	s.logger.Error("request failed",
		"path", r.URL.Path,
		"status", status,
		"code", code,
		"err", err)
	writeJSON(w, status, errorBody{Code: string(code), Message: tverrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Lifecycle
// =============================================================================

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. It
// returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving", "addr", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
