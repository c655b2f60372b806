// Package observability holds the Prometheus collectors exported on /metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	dashboardRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillup",
		Subsystem: "dashboard",
		Name:      "requests_total",
		Help:      "Dashboard statistics requests served over HTTP, by outcome.",
	}, []string{"outcome"})
	dashboardDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skillup",
		Subsystem: "dashboard",
		Name:      "compute_seconds",
		Help:      "Time spent loading activities and computing dashboard statistics.",
		Buckets:   prometheus.DefBuckets,
	})
	activitiesLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillup",
		Subsystem: "activities",
		Name:      "logged_total",
		Help:      "Learning activities created, by initial status.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(dashboardRequests, dashboardDuration, activitiesLogged)
}

// ObserveDashboard records one dashboard request. Bot and scheduler reads are not counted.
func ObserveDashboard(started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	dashboardRequests.WithLabelValues(outcome).Inc()
	dashboardDuration.Observe(time.Since(started).Seconds())
}

// RecordActivityLogged counts a newly created activity.
func RecordActivityLogged(status string) {
	activitiesLogged.WithLabelValues(status).Inc()
}
