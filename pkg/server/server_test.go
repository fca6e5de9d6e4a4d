package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/config"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/input"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/metrics"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/reporter"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
)

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, *metrics.Recorder) {
	t.Helper()
	recorder := metrics.NewRecorder(false)
	sc, err := scorer.New(
		scorer.WithRandomSource(scorer.ConstantSource(0.5)),
		scorer.WithObserver(recorder),
	)
	require.NoError(t, err)

	srv, err := New(Options{
		Scorer:   sc,
		Recorder: recorder,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   cfg,
	})
	require.NoError(t, err)
	return srv, recorder
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestNewRequiresScorer(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestAssess(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/v1/assess",
		`{"pregnancies": 2, "glucose": 150, "bloodPressure": 85, "skinThickness": 25, "insulin": 90, "bmi": "32", "diabetesPedigree": 0.4, "age": 50}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var resp AssessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RiskHigh, resp.Risk)
	assert.Equal(t, 58, resp.Score)
	assert.Equal(t, 90, resp.Probability)
	assert.Equal(t, 92, resp.Confidence)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), resp.ID)
	assert.Equal(t, scorer.Disclaimer, resp.Disclaimer)
	assert.Equal(t, scorer.Recommendation(models.RiskHigh), resp.Recommendation)
}

func TestAssessKeepsCallerRequestID(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/assess", strings.NewReader(`{}`))
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	var resp AssessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RiskLow, resp.Risk)
	assert.Equal(t, []string{scorer.FallbackFactor}, resp.Factors)
	assert.NotEmpty(t, resp.Warnings)
}

func TestAssessRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{MaxBodyBytes: 64})
	h := srv.Handler()

	tests := []struct {
		name   string
		method string
		body   string
		status int
		errMsg string
	}{
		{"malformed json", http.MethodPost, `{"glucose": `, http.StatusBadRequest, "not valid JSON"},
		{"array", http.MethodPost, `[{"glucose": 100}]`, http.StatusBadRequest, "JSON object"},
		{"nested value", http.MethodPost, `{"glucose": {"value": 1}}`, http.StatusBadRequest, "glucose"},
		{"infinite", http.MethodPost, `{"bmi": "Infinity"}`, http.StatusBadRequest, "bmi is not a finite number"},
		{"too large", http.MethodPost, `{"glucose": "` + strings.Repeat("1", 100) + `"}`, http.StatusRequestEntityTooLarge, "exceeds"},
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, "/v1/assess", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.errMsg)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestAssessBatch(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})

	rec := do(t, srv.Handler(), http.MethodPost, "/v1/assess/batch",
		`[{"glucose": 150, "bmi": 32, "age": 50, "diabetesPedigree": 0.6, "bloodPressure": 85}, {}, {"glucose": 130, "bmi": 27, "age": 40}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc reporter.DocumentReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Results, 3)
	assert.Equal(t, models.RiskHigh, doc.Results[0].Risk)
	assert.Equal(t, models.RiskLow, doc.Results[1].Risk)
	assert.Equal(t, 2, doc.Results[2].Index)
	require.NotNil(t, doc.Summary)
	assert.Equal(t, 3, doc.Summary.Total)
	assert.Equal(t, models.RiskHigh, doc.Summary.HighestRisk)
	assert.NotEmpty(t, doc.Metadata.ID)
}

func TestAssessBatchLimits(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{MaxBatchSize: 2})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/v1/assess/batch", `[{}, {}, {}]`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/assess/batch", `{"glucose": 100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/assess/batch", `[]`)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc reporter.DocumentReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Empty(t, doc.Results)
}

func TestCatalogEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/v1/fields", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fields []input.Field
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	require.Len(t, fields, len(models.HealthFieldKeys))
	assert.Equal(t, "pregnancies", fields[0].Key)

	rec = do(t, h, http.MethodGet, "/v1/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rules []RuleSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.Len(t, rules, 8)
	assert.Equal(t, "glucose", rules[0].Field)
	assert.Equal(t, 30, rules[0].MaxPoints)
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].Order, rules[i].Order)
	}

	rec = do(t, h, http.MethodPost, "/v1/rules", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestHealthAndReadiness(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rules":8`)

	srv.SetReady(false)
	rec = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{})
	h := srv.Handler()

	do(t, h, http.MethodPost, "/v1/assess", `{"glucose": 150}`)
	do(t, h, http.MethodPost, "/v1/assess", `not json`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `diabetes_predictor_assessments_total{risk="moderate"} 1`)
	assert.Contains(t, body, `diabetes_predictor_http_requests_total{code="200",route="/v1/assess"} 1`)
	assert.Contains(t, body, `diabetes_predictor_http_requests_total{code="400",route="/v1/assess"} 1`)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, config.ServerConfig{Address: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	cancel()
	require.NoError(t, <-done)
}
