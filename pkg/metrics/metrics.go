package metrics

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "dapi"

	TapisSubsystem = "tapis"
	JobsSubsystem  = "jobs"
)

// results of submission and polling
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultOk       = "ok"
	ResultError    = "error"
)

// Metrics declares dapi client metrics.
//
// Methods of nil *Metrics are no-op.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
	polls           *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns metrics registered on prometheus.DefaultRegisterer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := New(prometheus.DefaultRegisterer)
		if err != nil {
			// registration can only fail for conflicting collectors; keep the client usable.
			m = newMetrics()
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// New builds metrics and registers them on reg.
//
// Collectors already registered on reg are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := newMetrics()
	if reg == nil {
		return m, nil
	}

	var err error
	m.requests, err = register(reg, m.requests)
	if err != nil {
		return nil, err
	}
	m.requestDuration, err = register(reg, m.requestDuration)
	if err != nil {
		return nil, err
	}
	m.submissions, err = register(reg, m.submissions)
	if err != nil {
		return nil, err
	}
	m.polls, err = register(reg, m.polls)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		are := prometheus.AlreadyRegisteredError{}
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func newMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: TapisSubsystem,
				Name:      "requests_total",
				Help:      "Total number of requests sent to TAPIS, by method, endpoint and status code.",
			}, []string{"method", "endpoint", "code"}),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: TapisSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Latency of TAPIS requests, in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			}, []string{"method", "endpoint"}),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: JobsSubsystem,
				Name:      "submissions_total",
				Help:      "Total number of job submissions. Result is `accepted` or `rejected`.",
			}, []string{"result"}),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: JobsSubsystem,
				Name:      "polls_total",
				Help:      "Total number of job status polls. Result is `ok` or `error`.",
			}, []string{"result"}),
	}
}

// ObserveRequest records a TAPIS request. code is 0 when no response arrived.
func (m *Metrics) ObserveRequest(method string, endpoint string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

func (m *Metrics) IncSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) IncPoll(result string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(result).Inc()
}

// Requests exposes the request counter for inspection.
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}

func (m *Metrics) Submissions() *prometheus.CounterVec {
	return m.submissions
}

func (m *Metrics) Polls() *prometheus.CounterVec {
	return m.polls
}
