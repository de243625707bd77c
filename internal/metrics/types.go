package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MergeRuns           prometheus.Counter
	MergeFailures       prometheus.Counter
	DedupRuns           prometheus.Counter
	DuplicatesCollapsed prometheus.Counter
	RewriteDuration     prometheus.Histogram
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}

// Persistent counter keys.
const (
	KeyMergesCompleted     = "merges_completed"
	KeyDedupRuns           = "dedup_runs"
	KeyDuplicatesCollapsed = "duplicates_collapsed"
	KeySlackSent           = "slack_notifications_sent"
	KeySlackFailed         = "slack_notifications_failed"
)
