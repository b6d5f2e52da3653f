// Package api - Thin HTTP layer over the mortality engine
// The API is ONLY responsible for: parameter parsing, engine calls, output serialization.
// The API NEVER computes rates itself.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"irs-mortality/core/engine"
	"irs-mortality/core/output"
	"irs-mortality/core/types"
	"irs-mortality/internal/errors"
	"irs-mortality/internal/logging"
)

// HeaderRequestID carries the request correlation ID
const HeaderRequestID = "X-Request-ID"

type ctxKey int

const tablesKey ctxKey = iota

// Server is the API server
type Server struct {
	router  *httprouter.Router
	version string
	tables  atomic.Pointer[engine.Tables]
	formats *output.Registry
	metrics *metrics
	log     *zap.Logger
}

// NewServer creates a new API server over tables; tables may be nil until
// SetTables is called.
func NewServer(version string, tables *engine.Tables) *Server {
	s := &Server{
		router:  httprouter.New(),
		version: version,
		formats: output.DefaultRegistry(true),
		metrics: newMetrics(),
		log:     logging.Named("api"),
	}
	if tables != nil {
		s.tables.Store(tables)
	}

	s.registerRoutes()
	return s
}

// SetTables swaps the data set served by subsequent requests
func (s *Server) SetTables(tables *engine.Tables) {
	s.tables.Store(tables)
	s.metrics.observeReload()
	s.log.Info("tables replaced", zap.Stringer("fingerprint", tables.Fingerprint()))
}

// Tables returns the data set currently served
func (s *Server) Tables() *engine.Tables {
	return s.tables.Load()
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.handle(http.MethodGet, "/health", s.handleHealth)
	s.handle(http.MethodGet, "/version", s.handleVersion)
	s.handle(http.MethodGet, "/metrics", s.handleMetrics)

	s.handle(http.MethodGet, "/v1/tables/:year", s.handleTable)
	s.handle(http.MethodGet, "/v1/tables/:year/:kind", s.handleTable)
	s.handle(http.MethodGet, "/v1/rates/:year/:category/:age", s.handleRate)

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.NotFound("route", r.URL.Path))
	})
	s.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, ErrorResponse{
			Error:     ErrorDetail{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed on " + r.URL.Path},
			RequestID: w.Header().Get(HeaderRequestID),
		}, http.StatusMethodNotAllowed)
	})
}

// handle registers h and counts its responses under the route pattern
func (s *Server) handle(method, route string, h http.HandlerFunc) {
	s.router.Handler(method, route, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.metrics.observeRequest(route, rec.status)
	}))
}

// ServeHTTP implements http.Handler. Every response carries a request ID
// and, once data is loaded, the data fingerprint as its ETag.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(HeaderRequestID, id)

	// one data set per request even if SetTables runs concurrently
	tables := s.tables.Load()
	if tables != nil {
		w.Header().Set("ETag", strconv.Quote(tables.Fingerprint().Hex()))
		r = r.WithContext(context.WithValue(r.Context(), tablesKey, tables))
	}

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.router.ServeHTTP(rec, r)

	s.log.Debug("request",
		zap.String("request_id", id),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)))
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Version: s.version, Time: nowUTC()}
	status := http.StatusOK
	if tables := tablesFrom(r); tables != nil {
		resp.Fingerprint = tables.Fingerprint().Hex()
	} else {
		resp.Status = "loading"
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, resp, status)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	resp := VersionResponse{
		Version:    s.version,
		Engine:     "irs-mortality",
		APIVersion: "v1",
	}
	if tables := tablesFrom(r); tables != nil {
		resp.BaseYear = tables.BaseYear()
		resp.PublishedYears = tables.PublishedYears()
		resp.FinalPrecision = tables.FinalPrecision()
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleMetrics handles GET /metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	fingerprint, baseYear := "", 0
	if tables := tablesFrom(r); tables != nil {
		fingerprint, baseYear = tables.Fingerprint().Hex(), tables.BaseYear()
	}

	var buf bytes.Buffer
	if err := writeMetrics(&buf, s.metrics.families(fingerprint, baseYear)); err != nil {
		s.writeError(w, errors.Internal("encode metrics", err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleTable handles GET /v1/tables/:year[/:kind]?format=json|csv|markdown
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())

	kind, err := output.ParseKind(params.ByName("kind"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	format := output.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		if format, err = output.ParseFormat(f); err != nil {
			s.writeError(w, err)
			return
		}
		if format == output.FormatCLI {
			s.writeError(w, errors.Input("format cli is only available from the command line"))
			return
		}
	}

	e, err := s.engineFor(r, params.ByName("year"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	full, err := e.FullTable()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.observeTable(string(full.Source))

	report := output.NewReport(full, kind)
	if format == output.FormatJSON {
		s.writeJSON(w, output.NewDocument(report), http.StatusOK)
		return
	}

	var buf bytes.Buffer
	if err := s.formats.Render(&buf, format, report); err != nil {
		s.writeError(w, errors.Internal("render table", err))
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleRate handles GET /v1/rates/:year/:category/:age
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())

	category, err := types.ParseCategory(params.ByName("category"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	age, err := strconv.Atoi(params.ByName("age"))
	if err != nil || age < types.MinAge || age > types.MaxAge {
		s.writeError(w, errors.Newf(errors.TypeInput, "age must be an integer between %d and %d, got %q",
			types.MinAge, types.MaxAge, params.ByName("age")))
		return
	}

	e, err := s.engineFor(r, params.ByName("year"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	rate, err := e.Rate430(category, age)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, RateResponse{
		CalcYear:    e.CalcYear(),
		Category:    string(category),
		Age:         age,
		Rate:        json.Number(rate.String()),
		Source:      string(e.Source()),
		Fingerprint: e.Tables().Fingerprint().Hex(),
	}, http.StatusOK)
}

// engineFor builds an engine for the year path parameter
func (s *Server) engineFor(r *http.Request, yearParam string) (*engine.Engine, error) {
	tables := tablesFrom(r)
	if tables == nil {
		return nil, errors.New(errors.TypeInternal, "mortality data is not loaded")
	}
	year, err := strconv.Atoi(yearParam)
	if err != nil {
		return nil, errors.Newf(errors.TypeInput, "year must be an integer, got %q", yearParam)
	}
	return engine.New(tables, year)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if e, ok := errors.As(err); ok {
		message = e.Message
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("request_id", w.Header().Get(HeaderRequestID)), zap.Error(err))
	}
	s.writeJSON(w, ErrorResponse{
		Error:     ErrorDetail{Code: string(errors.TypeOf(err)), Message: message},
		RequestID: w.Header().Get(HeaderRequestID),
	}, status)
}

// statusFor maps error types to HTTP status codes
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeRange, errors.TypeInput:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func contentType(format output.Format) string {
	switch format {
	case output.FormatCSV:
		return "text/csv; charset=utf-8"
	case output.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

func tablesFrom(r *http.Request) *engine.Tables {
	tables, _ := r.Context().Value(tablesKey).(*engine.Tables)
	return tables
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
