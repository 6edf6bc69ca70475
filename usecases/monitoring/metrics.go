//       _
//   ___| | ___ _ __ ___   __ _ _ __
//  / _ \ |/ _ \ '_ ` _ \ / _` | '_ \
// |  __/ |  __/ | | | | | (_| | |_) |
//  \___|_|\___|_| |_| |_|\__,_| .__/
//                              |_|
//
//  Copyright © 2019 - 2025 Elemap B.V. All rights reserved.
//
//  CONTACT: hello@elemap.io
//

// Package monitoring bundles the prometheus instruments of the server. The
// metrics listener runs on its own port, keeping the query API free of
// operational endpoints.
package monitoring

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}

// Metrics holds every instrument the element map exposes. All fields are
// registered on construction, so a nil Metrics is never valid.
type Metrics struct {
	OperationTotal       *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
	SnapshotLoadDuration prometheus.Histogram
	BatchesIndexed       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		OperationTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "elemap",
			Name:      "operation_total",
			Help:      "Element map operations by operation and status.",
		}, []string{"operation", "status"}),
		OperationDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "elemap",
			Name:      "operation_duration_seconds",
			Help:      "Duration of element map operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		SnapshotLoadDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "elemap",
			Name:      "snapshot_load_duration_seconds",
			Help:      "Duration of element map snapshot loads.",
			Buckets:   prometheus.DefBuckets,
		}),
		BatchesIndexed: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "elemap",
			Name:      "batches_indexed",
			Help:      "Number of batches discovered by the last storage scan.",
		}),
	}
}

// Serve blocks on the metrics listener.
func Serve(config Config, reg *prometheus.Registry, logger logrus.FieldLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.WithField("action", "monitoring_startup").
		WithField("port", config.Port).
		Info("serving metrics")
	return http.ListenAndServe(fmt.Sprintf(":%d", config.Port), mux)
}
