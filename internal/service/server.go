// Package service is the validation/conversion service exports submit
// their XML to. It parses documents into the generic tree only.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/internal/logging"
	"github.com/rendis/batchml/internal/validation"
	"github.com/rendis/batchml/pkg/schema"
)

const (
	defaultMaxBody = 10 * 1024 * 1024 // 10MB
	xmlQueryParam  = "xml_string"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchml_service_requests_total",
			Help: "Total number of validation service requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batchml_service_request_duration_seconds",
			Help:    "Validation service request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Deps holds what the server needs.
type Deps struct {
	Validator *validation.Validator
	Logger    *slog.Logger
	// MaxBody bounds request bodies; zero selects 10MB.
	MaxBody int64
}

// Server serves the validation routes.
type Server struct {
	validator *validation.Validator
	query     *expressions.DocumentQuery
	logger    *slog.Logger
	maxBody   int64
}

// New creates a Server.
func New(deps Deps) (*Server, error) {
	if deps.Validator == nil {
		return nil, schema.NewError(schema.ErrCodeInvalidInput, "service: validator is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.MaxBody <= 0 {
		deps.MaxBody = defaultMaxBody
	}
	return &Server{
		validator: deps.Validator,
		query:     expressions.NewDocumentQuery(),
		logger:    deps.Logger,
		maxBody:   deps.MaxBody,
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/grecipe", func(r chi.Router) {
		r.Get("/validate", s.handleGeneralQuery)
		r.Post("/validate", s.handleValidate(b2mml.RootGRecipe))
	})
	r.Post("/mrecipe/validate", s.handleValidate(b2mml.RootBatchInfo))
	r.Post("/api/recipe/master", s.handleMaster)
	r.Post("/recipes/capabilities", s.handleCapabilities)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("validation service listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// verdict is the JSON body of a validation answer.
type verdict struct {
	Valid    bool                     `json:"valid"`
	Errors   []schema.ValidationIssue `json:"errors,omitempty"`
	Warnings []schema.ValidationIssue `json:"warnings,omitempty"`
}

func (s *Server) handleGeneralQuery(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get(xmlQueryParam)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, rejection("/", schema.ErrCodeInvalidInput, "missing "+xmlQueryParam+" parameter"))
		return
	}
	s.respond(w, r, b2mml.RootGRecipe, []byte(text))
}

func (s *Server) handleValidate(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		s.respond(w, r, root, body)
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, root string, data []byte) {
	result, ok := s.check(w, r, root, data)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, verdict{Valid: true, Warnings: result.Warnings})
}

// check validates data as a document with the given root. On failure it
// writes the 400 answer and returns false.
func (s *Server) check(w http.ResponseWriter, r *http.Request, root string, data []byte) (*schema.ValidationResult, bool) {
	doc, result, err := s.validator.ValidateXML(r.Context(), data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, rejection("/", schema.ErrorCode(err), err.Error()))
		return nil, false
	}
	if doc.Name != root {
		writeJSON(w, http.StatusBadRequest, rejection("/", schema.ErrCodeSchemaViolation,
			"expected root element "+root+", got "+doc.Name))
		return nil, false
	}
	if !result.Valid() {
		s.logger.WarnContext(r.Context(), "document rejected",
			slog.String("root", root),
			slog.Int("errors", len(result.Errors)),
		)
		writeJSON(w, http.StatusBadRequest, verdict{Errors: result.Errors, Warnings: result.Warnings})
		return nil, false
	}
	return result, true
}

func (s *Server) handleMaster(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if _, ok := s.check(w, r, b2mml.RootBatchInfo, body); !ok {
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.ErrorContext(r.Context(), "write master recipe", slog.Any("error", err))
	}
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	doc, err := b2mml.Unmarshal(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, rejection("/", schema.ErrCodeInvalidInput, err.Error()))
		return
	}
	if doc.Name != b2mml.RootGRecipe {
		writeJSON(w, http.StatusBadRequest, rejection("/", schema.ErrCodeSchemaViolation,
			"expected root element "+b2mml.RootGRecipe+", got "+doc.Name))
		return
	}
	caps, err := s.query.Capabilities(r.Context(), b2mml.DocumentInfoset(doc))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "capability query failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, rejection("/", schema.ErrorCode(err), err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, caps)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, rejection("/", schema.ErrCodeInvalidInput, "read request body: "+err.Error()))
		return nil, false
	}
	return body, true
}

func rejection(path, code, message string) verdict {
	return verdict{Errors: []schema.ValidationIssue{{
		Path:     path,
		Code:     code,
		Message:  message,
		Severity: schema.SeverityError,
	}}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", slog.Any("error", err))
	}
}
