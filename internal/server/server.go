// Package server exposes the conversion pipeline over HTTP.
//
// Routes:
//
//	POST /v1/convert?format=etf   convert the machine document in the body
//	GET  /v1/formats              list the output formats
//	GET  /healthz                 liveness and build version
//	GET  /metrics                 Prometheus metrics
//
// The request body format is chosen by its Content-Type (JSON when absent).
// Failures are reported as {"code": ..., "message": ...} with status 400 for
// bad input and 500 otherwise.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/mealyetf/pkg/buildinfo"
	mealyerr "github.com/matzehuels/mealyetf/pkg/errors"
	mio "github.com/matzehuels/mealyetf/pkg/io"
	"github.com/matzehuels/mealyetf/pkg/observability"
	"github.com/matzehuels/mealyetf/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds the size of an uploaded machine document.
const DefaultMaxBodyBytes = 4 << 20

// RequestIDHeader carries the per-request id on responses.
const RequestIDHeader = "X-Request-ID"

// unmatchedRoute labels requests no route matched, so unknown paths share one
// metric series.
const unmatchedRoute = "unmatched"

// Server handles conversion requests with a shared pipeline runner.
type Server struct {
	Runner       *pipeline.Runner
	Metrics      *Metrics // optional; /metrics is not mounted when nil
	Logger       *log.Logger
	MaxBodyBytes int64
}

// New creates a server for runner. metrics may be nil.
func New(runner *pipeline.Runner, metrics *Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Runner:       runner,
		Metrics:      metrics,
		Logger:       logger,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Handler returns the router serving all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	r.Get("/v1/formats", s.formats)
	r.Post("/v1/convert", s.convert)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) formats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": pipeline.ValidFormats})
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	logger := s.Logger.With("request_id", w.Header().Get(RequestIDHeader))

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.DefaultFormat
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, logger, err)
		return
	}

	srcFormat, err := mio.FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, logger, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, logger, http.StatusRequestEntityTooLarge,
				mealyerr.New(mealyerr.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.fail(w, logger, mealyerr.Wrap(mealyerr.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	result, err := s.Runner.Execute(r.Context(), pipeline.Options{
		Source:       body,
		SourceFormat: srcFormat,
		Formats:      []string{format},
		Refresh:      refresh,
		Logger:       logger,
	})
	if err != nil {
		s.fail(w, logger, err)
		return
	}

	cacheStatus := "miss"
	if result.CacheInfo.Hits[format] {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Machine-Hash", result.MachineHash)
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Artifacts[format]); err != nil {
		logger.Warn("write response", "err", err)
	}
}

type errorBody struct {
	Code    mealyerr.Code `json:"code"`
	Message string        `json:"message"`
}

// fail reports err with a status derived from its code.
func (s *Server) fail(w http.ResponseWriter, logger *log.Logger, err error) {
	status := http.StatusInternalServerError
	if mealyerr.IsClientError(err) {
		status = http.StatusBadRequest
	}
	s.writeError(w, logger, status, err)
}

func (s *Server) writeError(w http.ResponseWriter, logger *log.Logger, status int, err error) {
	code := mealyerr.GetCode(err)
	if code == "" {
		code = mealyerr.ErrCodeInternal
	}
	msg := mealyerr.UserMessage(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "err", err)
		msg = "internal error"
	} else {
		logger.Debug("request rejected", "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID assigns every request a fresh id, or keeps a valid one supplied
// by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// observe reports each request to the HTTP hooks, labelled by route pattern
// or unmatchedRoute.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}
