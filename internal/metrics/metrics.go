// Package metrics exposes Prometheus collectors for conversions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	conversions     *prometheus.CounterVec
	analyses        *prometheus.CounterVec
	rowsIn          prometheus.Counter
	rowsOut         prometheus.Counter
	defaultCategory prometheus.Counter
	duration        *prometheus.HistogramVec
	activeSessions  prometheus.Gauge
	referenceRows   *prometheus.GaugeVec
}

func New() *Collector {
	c := &Collector{}

	c.conversions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalogconv",
		Name:      "conversions_total",
		Help:      "Conversions by detected platform and outcome (ok, invalid, error)",
	}, []string{"platform", "outcome"})

	c.analyses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalogconv",
		Name:      "analyses_total",
		Help:      "Uploaded files analyzed, by detected platform",
	}, []string{"platform"})

	c.rowsIn = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalogconv",
		Name:      "rows_in_total",
		Help:      "Source rows read by conversions",
	})
	c.rowsOut = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalogconv",
		Name:      "rows_out_total",
		Help:      "Product rows written by conversions",
	})
	c.defaultCategory = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "catalogconv",
		Name:      "default_category_rows_total",
		Help:      "Rows whose category_id fell back to the default",
	})

	c.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalogconv",
		Name:      "conversion_duration_seconds",
		Help:      "Time spent transforming and validating one file",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"platform"})

	c.activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "catalogconv",
		Name:      "active_sessions",
		Help:      "Conversion sessions held in memory",
	})

	c.referenceRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "catalogconv",
		Name:      "reference_rows",
		Help:      "Rows loaded per category reference level",
	}, []string{"level"})

	return c
}

func (c *Collector) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.conversions,
		c.analyses,
		c.rowsIn,
		c.rowsOut,
		c.defaultCategory,
		c.duration,
		c.activeSessions,
		c.referenceRows,
	)
}

// ObserveAnalysis counts one analyzed upload.
func (c *Collector) ObserveAnalysis(platform string) {
	c.analyses.WithLabelValues(platform).Inc()
}

// ObserveConversion records the outcome of one conversion.
func (c *Collector) ObserveConversion(platform, outcome string, rowsIn, rowsOut, defaulted int, d time.Duration) {
	c.conversions.WithLabelValues(platform, outcome).Inc()
	c.rowsIn.Add(float64(rowsIn))
	c.rowsOut.Add(float64(rowsOut))
	c.defaultCategory.Add(float64(defaulted))
	c.duration.WithLabelValues(platform).Observe(d.Seconds())
}

// SetActiveSessions updates the session gauge.
func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// SetReferenceRows records the size of one reference level.
func (c *Collector) SetReferenceRows(level string, n int) {
	c.referenceRows.WithLabelValues(level).Set(float64(n))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
