package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMergeRuns()
	IncMergeFailures()
	IncDedupRuns()
	AddDuplicatesCollapsed(count int)
	ObserveRewriteDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists named counters so operational totals survive restarts.
type MetricsStore interface {
	Increment(key string)
	IncrementBy(key string, delta int)
	GetAll() (map[string]int, error)
}
