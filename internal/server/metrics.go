package server

//
// Metrics definitions
//

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/wirescope/wirescope/internal/model"
)

// metricsSummaryObjectives returns the summary objectives for promauto.NewSummary.
func metricsSummaryObjectives() map[float64]float64 {
	return map[float64]float64{
		0.25: 0.010, // 0.240 <= φ <= 0.260
		0.5:  0.010, // 0.490 <= φ <= 0.510
		0.75: 0.010, // 0.740 <= φ <= 0.760
		0.9:  0.010, // 0.899 <= φ <= 0.901
		0.99: 0.001, // 0.989 <= φ <= 0.991
	}
}

var (
	// metricRequestsCount counts the number of /api/proxy requests we served.
	metricRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wirescope_proxy_requests_count",
		Help: "Total number of processed proxy requests",
	}, []string{"status", "code"})

	// metricRequestsInflight gauges the number of requests currently inflight.
	metricRequestsInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wirescope_proxy_requests_inflight_gauge",
		Help: "The number or proxy requests currently inflight",
	})

	// metricExecuteDurationSeconds summarizes the time to execute a request.
	metricExecuteDurationSeconds = promauto.NewSummary(prometheus.SummaryOpts{
		Name:       "wirescope_execute_duration_seconds",
		Help:       "Summarizes the time to execute a proxy request including redirects (in seconds)",
		Objectives: metricsSummaryObjectives(),
	})

	// metricPhaseDurationSeconds summarizes the duration of each phase of successful requests.
	metricPhaseDurationSeconds = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "wirescope_phase_duration_seconds",
		Help:       "Summarizes the duration of the DNS, TCP, TLS, TTFB and download phases (in seconds)",
		Objectives: metricsSummaryObjectives(),
	}, []string{"phase"})

	// metricStorageRequestsCount counts the number of /api/storage requests.
	metricStorageRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wirescope_storage_requests_count",
		Help: "Total number of processed storage requests",
	}, []string{"method", "status"})
)

// observePhases records the phase durations of a successful execution.
func observePhases(info *model.TimingInfo) {
	phases := []struct {
		name  string
		value *uint64
	}{
		{"dns", info.DNS},
		{"tcp", info.TCP},
		{"tls", info.TLS},
		{"ttfb", info.TTFB},
		{"download", info.Download},
	}
	for _, phase := range phases {
		if phase.value == nil {
			continue
		}
		metricPhaseDurationSeconds.WithLabelValues(phase.name).Observe(float64(*phase.value) / 1000)
	}
}
