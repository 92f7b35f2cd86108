// Package metrics provides Prometheus metrics for the reply pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "comfortbot"

var (
	// RepliesTotal counts generated replies by mood; crisis replies use mood "crisis".
	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Total number of generated replies",
		},
		[]string{"mood"},
	)

	// CrisisTotal counts crisis overrides.
	CrisisTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crisis_total",
			Help:      "Total number of utterances that triggered the crisis override",
		},
	)

	// MoodClassificationsTotal counts mood decisions by path (scorer or keyword).
	MoodClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mood_classifications_total",
			Help:      "Total number of mood classifications by path and mood",
		},
		[]string{"path", "mood"},
	)

	// ScorerDuration measures polarity scoring latency.
	ScorerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scorer_duration_seconds",
			Help:      "Duration of polarity scoring calls in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
	)

	// LogWriteFailuresTotal counts conversation log lines that could not be written.
	LogWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_write_failures_total",
			Help:      "Total number of conversation log append failures",
		},
	)
)

// RecordReply records one reply.
func RecordReply(mood string, crisis bool) {
	if crisis {
		CrisisTotal.Inc()
		mood = "crisis"
	}
	RepliesTotal.WithLabelValues(mood).Inc()
}

// RecordMood records one mood classification.
func RecordMood(path, mood string, seconds float64) {
	MoodClassificationsTotal.WithLabelValues(path, mood).Inc()
	if path == "scorer" {
		ScorerDuration.Observe(seconds)
	}
}

// RecordLogWriteFailure records a failed log append.
func RecordLogWriteFailure() {
	LogWriteFailuresTotal.Inc()
}
