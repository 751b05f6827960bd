package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics records the outcome of risk report runs.
type ReportMetrics struct {
	duration      *prometheus.HistogramVec
	success       *prometheus.CounterVec
	failure       *prometheus.CounterVec
	ordersScored  prometheus.Counter
	vendorsRanked prometheus.Histogram
	dateFailures  prometheus.Counter
	missingLoad   prometheus.Counter
}

// NewReportMetrics registers the report metrics on the provided registerer.
func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "irf_report_duration_seconds",
		Help:    "Duration of report runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irf_report_success_total",
		Help: "Successful report runs.",
	}, []string{"trigger"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irf_report_failure_total",
		Help: "Failed report runs by stage.",
	}, []string{"trigger", "stage"})
	ordersScored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irf_orders_scored_total",
		Help: "Orders that received a delivery prediction.",
	})
	vendorsRanked := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irf_vendors_ranked",
		Help:    "Vendors ranked per report run.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
	dateFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irf_order_date_parse_failures_total",
		Help: "Order date cells that could not be parsed.",
	})
	missingLoad := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "irf_vendor_load_reference_missing_total",
		Help: "Ranked vendors without a historical load reference.",
	})
	reg.MustRegister(duration, success, failure, ordersScored, vendorsRanked, dateFailures, missingLoad)
	return &ReportMetrics{
		duration:      duration,
		success:       success,
		failure:       failure,
		ordersScored:  ordersScored,
		vendorsRanked: vendorsRanked,
		dateFailures:  dateFailures,
		missingLoad:   missingLoad,
	}
}

// ObserveDuration records the duration of a run started by trigger.
func (m *ReportMetrics) ObserveDuration(trigger string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for trigger.
func (m *ReportMetrics) IncSuccess(trigger string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncFailure increments the failure counter for trigger at stage.
func (m *ReportMetrics) IncFailure(trigger, stage string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(trigger), normalizeLabel(stage)).Inc()
}

// ObserveBatch records per-run volumes.
func (m *ReportMetrics) ObserveBatch(orders, vendors, dateFailures, missingLoad int) {
	if m == nil || m.ordersScored == nil {
		return
	}
	m.ordersScored.Add(float64(orders))
	m.vendorsRanked.Observe(float64(vendors))
	m.dateFailures.Add(float64(dateFailures))
	m.missingLoad.Add(float64(missingLoad))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
