package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	mergeRuns           int
	mergeFailures       int
	dedupRuns           int
	duplicatesCollapsed int
	rewriteDurations    []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		rewriteDurations: make([]float64, 0),
	}
}

func (m *Mock) IncMergeRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeRuns++
}

func (m *Mock) IncMergeFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeFailures++
}

func (m *Mock) IncDedupRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dedupRuns++
}

func (m *Mock) AddDuplicatesCollapsed(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duplicatesCollapsed += count
}

func (m *Mock) ObserveRewriteDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewriteDurations = append(m.rewriteDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MergeRuns returns the number of times IncMergeRuns was called.
func (m *Mock) MergeRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mergeRuns
}

// MergeFailures returns the number of times IncMergeFailures was called.
func (m *Mock) MergeFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mergeFailures
}

// DedupRuns returns the number of times IncDedupRuns was called.
func (m *Mock) DedupRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dedupRuns
}

// DuplicatesCollapsed returns the running total passed to AddDuplicatesCollapsed.
func (m *Mock) DuplicatesCollapsed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duplicatesCollapsed
}

// RewriteDurations returns the observed rewrite durations.
func (m *Mock) RewriteDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.rewriteDurations...)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
