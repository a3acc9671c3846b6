package metrics_test

import (
	"testing"
	"time"

	"github.com/designsafe-ci/dapi/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	t.Run("it counts requests by method, endpoint and code", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m, err := metrics.New(reg)
		if err != nil {
			t.Fatal(err)
		}

		m.ObserveRequest("GET", "jobs", 200, 10*time.Millisecond)
		m.ObserveRequest("GET", "jobs", 200, 20*time.Millisecond)
		m.ObserveRequest("POST", "jobs", 400, 20*time.Millisecond)

		if got := testutil.ToFloat64(m.Requests().WithLabelValues("GET", "jobs", "200")); got != 2 {
			t.Errorf("GET jobs 200: %v", got)
		}
		if got := testutil.ToFloat64(m.Requests().WithLabelValues("POST", "jobs", "400")); got != 1 {
			t.Errorf("POST jobs 400: %v", got)
		}
	})

	t.Run("registering twice reuses collectors", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m1, err := metrics.New(reg)
		if err != nil {
			t.Fatal(err)
		}
		m2, err := metrics.New(reg)
		if err != nil {
			t.Fatal(err)
		}

		m1.IncSubmission(metrics.ResultAccepted)
		m2.IncSubmission(metrics.ResultAccepted)

		if got := testutil.ToFloat64(m1.Submissions().WithLabelValues(metrics.ResultAccepted)); got != 2 {
			t.Errorf("submissions: %v", got)
		}
	})

	t.Run("nil metrics are no-op", func(t *testing.T) {
		var m *metrics.Metrics
		m.ObserveRequest("GET", "apps", 200, time.Second)
		m.IncSubmission(metrics.ResultRejected)
		m.IncPoll(metrics.ResultError)
	})
}
