// Package metrics exposes Prometheus collectors for assessments and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

const namespace = "diabetes_predictor"

// Recorder owns a registry and the collectors registered on it. It satisfies
// scorer.Observer.
type Recorder struct {
	registry *prometheus.Registry

	assessments     *prometheus.CounterVec
	scores          prometheus.Histogram
	factors         *prometheus.CounterVec
	scoringDuration prometheus.Histogram
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRecorder creates a recorder with its own registry. Go runtime and process
// collectors are included when withRuntime is set.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Assessments produced, by risk tier.",
		}, []string{"risk"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_score",
			Help:      "Cumulative rule score of each assessment.",
			Buckets:   []float64{0, 10, 25, 40, 50, 65, 80, 108},
		}),
		factors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_factors_total",
			Help:      "Risk factors reported, by factor text.",
		}, []string{"factor"}),
		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Time spent scoring one input.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	r.registry.MustRegister(
		r.assessments,
		r.scores,
		r.factors,
		r.scoringDuration,
		r.requests,
		r.requestDuration,
	)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return r
}

// ObserveAssessment records one assessment
func (r *Recorder) ObserveAssessment(assessment models.RiskAssessment, elapsed time.Duration) {
	r.assessments.WithLabelValues(string(assessment.Risk)).Inc()
	r.scores.Observe(float64(assessment.Score))
	for _, f := range assessment.Factors {
		r.factors.WithLabelValues(f).Inc()
	}
	r.scoringDuration.Observe(elapsed.Seconds())
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// InstrumentHandler counts requests and measures latency for route
func (r *Recorder) InstrumentHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, req)
		r.requests.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		r.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
