// Package health implements the engine-wide health monitor: a ring buffer
// of recent errors, per-engine status tracking, and periodic synthetic
// probes. It sits alongside internal/resilience/circuitbreaker (which
// already tracks open/closed/half-open state per dependency) and adds the
// richer, pipeline-facing reporting the scraping engine's callers need.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"leadscout/internal/infra/httpclient"
)

// ErrorClass buckets an observed failure the way retry.IsRetryable's
// status-code dispatch does, so the monitor's recommendations can be
// computed without re-parsing every error.
type ErrorClass string

const (
	ClassTimeout  ErrorClass = "timeout"
	ClassNotFound ErrorClass = "not_found"
	ClassBlocked  ErrorClass = "blocked"
	ClassOther    ErrorClass = "other"
)

// ErrorEntry is one record in the ring buffer.
type ErrorEntry struct {
	Engine    string
	Class     ErrorClass
	Message   string
	Timestamp time.Time
}

// EngineStatus is the last-known state of one source adapter or LLM
// provider.
type EngineStatus struct {
	Status      string // "ok", "degraded", "down"
	LastError   string
	LastCheck   time.Time
	ResultCount int
}

// HealthReport is the snapshot returned to callers of GetHealthReport.
type HealthReport struct {
	SuccessRate  float64
	AvgLatency   time.Duration
	Engines      map[string]EngineStatus
	RecentErrors []ErrorEntry
}

const ringSize = 50

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// sharedMetrics registers the monitor's collectors exactly once per
// process; every Monitor instance reports into the same series.
var sharedMetrics = sync.OnceValue(newMetrics)

func newMetrics() *metrics {
	return &metrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "leadgen_engine_requests_total",
			Help: "Requests made per engine, labeled by outcome.",
		}, []string{"engine", "outcome"}),
		latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadgen_engine_request_duration_seconds",
			Help:    "Latency of requests made per engine.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
	}
}

// Recorder is the narrow interface adapters/enrichers/extractors call
// after every external request; it is what Monitor implements.
type Recorder interface {
	RecordSuccess(engine string, latency time.Duration, resultCount int)
	RecordFailure(engine string, latency time.Duration, class ErrorClass, err error)
}

// Monitor is the concrete health monitor. One instance is shared across a
// job (or across the process, if jobs share engines).
type Monitor struct {
	mu       sync.RWMutex
	ring     []ErrorEntry
	ringHead int
	ringLen  int
	engines  map[string]EngineStatus

	totalRequests int64
	totalSuccess  int64
	totalLatency  time.Duration

	metrics *metrics
	client  *httpclient.Client
	probes  []string
}

func New(client *httpclient.Client, probeURLs []string) *Monitor {
	return &Monitor{
		ring:    make([]ErrorEntry, ringSize),
		engines: make(map[string]EngineStatus),
		metrics: sharedMetrics(),
		client:  client,
		probes:  probeURLs,
	}
}

// Classify buckets err into the monitor's error classes; callers that
// observe failures outside the HTTP client (the dispatcher's adapter
// completion path) use it to attribute them consistently.
func Classify(err error) ErrorClass {
	return classify(err)
}

func classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	switch {
	case isTimeout(err):
		return ClassTimeout
	case isNotFound(err):
		return ClassNotFound
	case isBlocked(err):
		return ClassBlocked
	default:
		return ClassOther
	}
}

func (m *Monitor) RecordSuccess(engine string, latency time.Duration, resultCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalRequests++
	m.totalSuccess++
	m.totalLatency += latency
	m.engines[engine] = EngineStatus{Status: "ok", LastCheck: time.Now(), ResultCount: resultCount}
	m.metrics.requests.WithLabelValues(engine, "success").Inc()
	m.metrics.latency.WithLabelValues(engine).Observe(latency.Seconds())
}

func (m *Monitor) RecordFailure(engine string, latency time.Duration, class ErrorClass, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalRequests++
	m.totalLatency += latency
	entry := ErrorEntry{Engine: engine, Class: class, Message: err.Error(), Timestamp: time.Now()}
	m.ring[m.ringHead] = entry
	m.ringHead = (m.ringHead + 1) % ringSize
	if m.ringLen < ringSize {
		m.ringLen++
	}

	status := "degraded"
	if prev, ok := m.engines[engine]; ok && prev.Status == "degraded" {
		status = "down"
	}
	m.engines[engine] = EngineStatus{Status: status, LastError: err.Error(), LastCheck: time.Now()}
	m.metrics.requests.WithLabelValues(engine, "failure").Inc()
	m.metrics.latency.WithLabelValues(engine).Observe(latency.Seconds())

	slog.Warn("engine request failed",
		slog.String("engine", engine),
		slog.String("class", string(class)),
		slog.Any("error", err))
}

// GetHealthReport snapshots the monitor's current state.
func (m *Monitor) GetHealthReport() HealthReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rate := 100.0
	var avgLatency time.Duration
	if m.totalRequests > 0 {
		rate = float64(m.totalSuccess) / float64(m.totalRequests) * 100
		avgLatency = m.totalLatency / time.Duration(m.totalRequests)
	}

	engines := make(map[string]EngineStatus, len(m.engines))
	for k, v := range m.engines {
		engines[k] = v
	}

	recent := make([]ErrorEntry, 0, m.ringLen)
	for i := 0; i < m.ringLen; i++ {
		idx := (m.ringHead - 1 - i + ringSize) % ringSize
		recent = append(recent, m.ring[idx])
	}

	return HealthReport{SuccessRate: rate, AvgLatency: avgLatency, Engines: engines, RecentErrors: recent}
}

// AttemptRecovery inspects recent errors and returns a list of mitigation
// actions it took (or recommends). It does not itself mutate adapter
// configuration beyond what the injected httpclient.Client already
// supports (UA rotation happens automatically inside the client on
// 403/429; this just surfaces that it happened).
func (m *Monitor) AttemptRecovery() []string {
	report := m.GetHealthReport()
	var actions []string
	blocked, timeouts := 0, 0
	for _, e := range report.RecentErrors {
		switch e.Class {
		case ClassBlocked:
			blocked++
		case ClassTimeout:
			timeouts++
		}
	}
	if blocked > 3 {
		actions = append(actions, "rotate user agent")
	}
	if timeouts > 3 {
		actions = append(actions, "increase timeout")
	}
	for engine, status := range report.Engines {
		if status.Status == "down" {
			actions = append(actions, "review url generation for "+engine)
		}
	}
	return actions
}

// RunHealthCheck performs one synthetic probe pass against the configured
// probe URLs, recording results the same way a real adapter call would.
func (m *Monitor) RunHealthCheck(ctx context.Context) {
	for _, u := range m.probes {
		start := time.Now()
		_, _, err := m.client.Get(ctx, u)
		latency := time.Since(start)
		if err != nil {
			m.RecordFailure("probe", latency, classify(err), err)
			continue
		}
		m.RecordSuccess("probe", latency, 1)
	}
}

// ResetCounters zeroes the running request totals so the success rate
// reflects the current day rather than the process lifetime. The error
// ring and per-engine statuses are kept.
func (m *Monitor) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalRequests = 0
	m.totalSuccess = 0
	m.totalLatency = 0
}

// StartProbing runs RunHealthCheck every interval and resets the
// counters daily, until ctx is canceled.
func (m *Monitor) StartProbing(ctx context.Context, interval time.Duration) {
	probe := time.NewTicker(interval)
	defer probe.Stop()
	reset := time.NewTicker(24 * time.Hour)
	defer reset.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-probe.C:
			m.RunHealthCheck(ctx)
		case <-reset.C:
			m.ResetCounters()
		}
	}
}
