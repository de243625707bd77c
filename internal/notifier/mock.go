package notifier

import (
	"sync"

	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/stats"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendMergeCompletedCalls []struct {
		GroupName        string
		SourceName       string
		TargetName       string
		RewrittenMatches int
	}
	SendDedupCompletedCalls []struct {
		GroupName string
		Collapsed int
	}
	SendResultNotificationCalls []struct{ Match *match.Match }
	SendLeaderboardCalls        []struct {
		GroupName  string
		Aggregates []stats.AggregatedStat
	}

	// Spies
	SendMergeCompletedFunc        func(groupName, sourceName, targetName string, rewrittenMatches int, dryRun bool) error
	SendDedupCompletedFunc        func(groupName string, collapsed int, dryRun bool) error
	FormatLeaderboardResponseFunc func(groupName string, aggregates []stats.AggregatedStat) (any, error)

	// Call records for format functions
	LastLeaderboardResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMergeCompletedCalls = nil
	m.SendDedupCompletedCalls = nil
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendMergeCompleted(groupName, sourceName, targetName string, rewrittenMatches int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMergeCompletedCalls = append(m.SendMergeCompletedCalls, struct {
		GroupName        string
		SourceName       string
		TargetName       string
		RewrittenMatches int
	}{groupName, sourceName, targetName, rewrittenMatches})
	if m.SendMergeCompletedFunc != nil {
		return m.SendMergeCompletedFunc(groupName, sourceName, targetName, rewrittenMatches, dryRun)
	}
	return nil
}

func (m *Mock) SendDedupCompleted(groupName string, collapsed int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDedupCompletedCalls = append(m.SendDedupCompletedCalls, struct {
		GroupName string
		Collapsed int
	}{groupName, collapsed})
	if m.SendDedupCompletedFunc != nil {
		return m.SendDedupCompletedFunc(groupName, collapsed, dryRun)
	}
	return nil
}

func (m *Mock) SendResultNotification(mt *match.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct{ Match *match.Match }{mt})
	return nil
}

func (m *Mock) SendLeaderboard(groupName string, aggregates []stats.AggregatedStat, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, struct {
		GroupName  string
		Aggregates []stats.AggregatedStat
	}{groupName, aggregates})
	return nil
}

func (m *Mock) FormatLeaderboardResponse(groupName string, aggregates []stats.AggregatedStat) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(groupName, aggregates)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}
