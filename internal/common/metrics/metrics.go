// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FormFieldChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_field_changes_total",
			Help: "Total number of field change events applied to forms",
		},
		[]string{"form", "field", "valid"},
	)

	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Total number of form submissions by outcome",
		},
		[]string{"form", "outcome"},
	)

	FormSubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "form_submission_duration_seconds",
			Help:    "Duration of form submission round trips in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"form"},
	)

	FormSubmissionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "form_submissions_active",
			Help: "Number of in-flight submissions per form",
		},
		[]string{"form"},
	)

	EventMailSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_request_mail_sends_total",
			Help: "Total number of event request mail send attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// BoolLabel renders a bool as a label value.
func BoolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
