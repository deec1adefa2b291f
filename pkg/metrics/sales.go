package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records counters for the sale lifecycle and the
// listing-to-sale conversion path.
type SaleMetrics struct {
	conversions   *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_conversions_total",
		Help: "Listing-to-sale conversions by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_status_transitions_total",
		Help: "Sale status transitions by target status.",
	}, []string{"status"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_notifications_total",
		Help: "Sale notification deliveries by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_operation_duration_seconds",
		Help:    "Duration of sale service operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(conversions, transitions, notifications, duration)
	return &SaleMetrics{
		conversions:   conversions,
		transitions:   transitions,
		notifications: notifications,
		duration:      duration,
	}
}

// IncConversion increments the conversion counter for the given outcome.
func (s *SaleMetrics) IncConversion(outcome string) {
	if s == nil || s.conversions == nil {
		return
	}
	s.conversions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncTransition increments the transition counter for the target status.
func (s *SaleMetrics) IncTransition(status string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncNotification increments the notification counter for the given outcome.
func (s *SaleMetrics) IncNotification(outcome string) {
	if s == nil || s.notifications == nil {
		return
	}
	s.notifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the duration of the named operation.
func (s *SaleMetrics) ObserveDuration(operation string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
