package notifier

import (
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/stats"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For identity maintenance
	SendMergeCompleted(groupName, sourceName, targetName string, rewrittenMatches int, dryRun bool) error
	SendDedupCompleted(groupName string, collapsed int, dryRun bool) error

	// For match results
	SendResultNotification(m *match.Match, dryRun bool) error

	// For leaderboards
	SendLeaderboard(groupName string, aggregates []stats.AggregatedStat, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(groupName string, aggregates []stats.AggregatedStat) (any, error)
}
