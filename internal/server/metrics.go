package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the trigger server's Prometheus collectors.
type Metrics struct {
	UploadsTotal       *prometheus.CounterVec
	UploadDuration     prometheus.Histogram
	LoginAnalysesTotal *prometheus.CounterVec
}

// NewMetrics registers the collectors on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgreport",
			Name:      "uploads_total",
			Help:      "Report upload attempts by outcome.",
		}, []string{"status"}),
		UploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orgreport",
			Name:      "upload_duration_seconds",
			Help:      "End to end report upload duration.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		LoginAnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orgreport",
			Name:      "login_analyses_total",
			Help:      "Login analysis runs by outcome.",
		}, []string{"status"}),
	}
}
