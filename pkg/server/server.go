// Package server exposes the scorer over a small JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/config"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/input"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/metrics"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/reporter"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/version"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// Options configures a Server
type Options struct {
	Scorer      *scorer.RiskScorer
	Recorder    *metrics.Recorder
	Logger      *slog.Logger
	Config      config.ServerConfig
	Parallelism int
}

// Server handles assessment requests
type Server struct {
	scorer      *scorer.RiskScorer
	recorder    *metrics.Recorder
	logger      *slog.Logger
	config      config.ServerConfig
	parallelism int
	ready       atomic.Bool
}

// AssessResponse is the body returned by POST /v1/assess
type AssessResponse struct {
	ID string `json:"id"`
	models.RiskAssessment
	Warnings   []string `json:"warnings,omitempty"`
	Disclaimer string   `json:"disclaimer"`
}

// RuleSummary describes one rule for GET /v1/rules
type RuleSummary struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Field     string            `json:"field"`
	Order     int               `json:"order"`
	MaxPoints int               `json:"maxPoints"`
	Tiers     []models.RuleTier `json:"tiers"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type requestIDKey struct{}

// New creates a server. It reports ready immediately; use SetReady to change that.
func New(opts Options) (*Server, error) {
	if opts.Scorer == nil {
		return nil, errors.New("server requires a scorer")
	}

	defaults := config.DefaultConfig().Server
	cfg := opts.Config
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaults.MaxBatchSize
	}
	if cfg.Address == "" {
		cfg.Address = defaults.Address
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		scorer:      opts.Scorer,
		recorder:    opts.Recorder,
		logger:      logger,
		config:      cfg,
		parallelism: opts.Parallelism,
	}
	s.ready.Store(true)
	return s, nil
}

// SetReady controls the /readyz answer
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "/v1/assess", s.assessHandler)
	s.handle(mux, "/v1/assess/batch", s.batchHandler)
	s.handle(mux, "/v1/fields", s.fieldsHandler)
	s.handle(mux, "/v1/rules", s.rulesHandler)
	s.handle(mux, "/healthz", s.healthzHandler)
	s.handle(mux, "/readyz", s.readyzHandler)
	if s.recorder != nil {
		mux.Handle("/metrics", s.recorder.Handler())
	}
	return s.withRequestID(mux)
}

func (s *Server) handle(mux *http.ServeMux, route string, h http.HandlerFunc) {
	var handler http.Handler = h
	if s.recorder != nil {
		handler = s.recorder.InstrumentHandler(route, handler)
	}
	mux.Handle(route, handler)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "address", s.config.Address)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		s.SetReady(false)

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultConfig().Server.ShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown error", "error", err)
			return err
		}

		s.logger.Info("Server shut down gracefully")
		return nil
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

func (s *Server) assessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	records, ok := s.readRecords(w, r, '{', "a JSON object")
	if !ok {
		return
	}
	in := records[0]

	assessment := s.scorer.Score(in)

	var warnings []string
	for _, warning := range input.CheckRanges(in) {
		warnings = append(warnings, warning.String())
	}

	s.logger.Debug("Assessed input", "request_id", requestID(r), "risk", assessment.Risk, "score", assessment.Score)
	s.writeJSON(w, r, http.StatusOK, AssessResponse{
		ID:             requestID(r),
		RiskAssessment: assessment,
		Warnings:       warnings,
		Disclaimer:     scorer.Disclaimer,
	})
}

func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	records, ok := s.readRecords(w, r, '[', "a JSON array")
	if !ok {
		return
	}
	if len(records) > s.config.MaxBatchSize {
		s.writeError(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d records exceeds the limit of %d", len(records), s.config.MaxBatchSize))
		return
	}

	start := time.Now()
	assessed, err := s.scorer.AssessBatch(r.Context(), records, s.parallelism)
	if err != nil {
		s.logger.Warn("Batch assessment aborted", "request_id", requestID(r), "error", err)
		s.writeError(w, r, http.StatusServiceUnavailable, "batch assessment aborted")
		return
	}

	report := reporter.NewAssessmentReport(assessed, time.Since(start))
	data, err := reporter.NewJSONReporter().GenerateReport(r.Context(), report)
	if err != nil {
		s.logger.Error("Failed to encode batch report", "request_id", requestID(r), "error", err)
		s.writeError(w, r, http.StatusInternalServerError, "failed to encode response")
		return
	}

	s.logger.Info("Assessed batch", "request_id", requestID(r), "records", len(assessed), "report_id", report.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *Server) fieldsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s.writeJSON(w, r, http.StatusOK, input.Fields())
}

func (s *Server) rulesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	rules := s.scorer.Rules()
	summaries := make([]RuleSummary, 0, len(rules))
	for _, rule := range rules {
		summaries = append(summaries, RuleSummary{
			ID:        rule.GetID(),
			Title:     rule.GetTitle(),
			Field:     rule.Spec.Field,
			Order:     rule.Spec.Order,
			MaxPoints: rule.MaxPoints(),
			Tiers:     rule.Spec.Tiers,
		})
	}
	s.writeJSON(w, r, http.StatusOK, summaries)
}

func (s *Server) healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.Error("Failed to write health check response", "error", err)
	}
}

func (s *Server) readyzHandler(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"rules":   len(s.scorer.Rules()),
		"version": version.GetVersion(),
	})
}

// readRecords reads a bounded body that must be valid JSON opening with want
func (s *Server) readRecords(w http.ResponseWriter, r *http.Request, want byte, expected string) ([]models.HealthInput, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return nil, false
		}
		s.writeError(w, r, http.StatusBadRequest, "failed to read request")
		return nil, false
	}

	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		s.writeError(w, r, http.StatusBadRequest, "request body is not valid JSON")
		return nil, false
	}
	if len(body) == 0 || body[0] != want {
		s.writeError(w, r, http.StatusBadRequest, "request body must be "+expected)
		return nil, false
	}

	records, err := input.LoadRecords(bytes.NewReader(body))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if want == '{' && len(records) != 1 {
		s.writeError(w, r, http.StatusBadRequest, "request body must be "+expected)
		return nil, false
	}

	for i, rec := range records {
		if field, ok := nonFinite(rec); ok {
			s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("record %d: %s is not a finite number", i, field))
			return nil, false
		}
	}

	return records, true
}

// nonFinite returns the first field holding an infinite value. JSON cannot
// carry such values back to the client.
func nonFinite(h models.HealthInput) (string, bool) {
	for _, key := range models.HealthFieldKeys {
		if v, _ := h.Value(key); math.IsInf(v, 0) || math.IsNaN(v) {
			return key, true
		}
	}
	return "", false
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.logger.Debug("Request rejected", "request_id", requestID(r), "path", r.URL.Path, "status", status, "error", msg)
	s.writeJSON(w, r, status, errorResponse{Error: msg, RequestID: requestID(r)})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode response", "request_id", requestID(r), "error", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}
