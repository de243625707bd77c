package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/metrics"
	"github.com/halisahaclub/halisaha/internal/notifier"
	"github.com/halisahaclub/halisaha/internal/stats"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendMergeCompleted(groupName, sourceName, targetName string, rewrittenMatches int, dryRun bool) error {
	msg := s.formatMergeCompleted(groupName, sourceName, targetName, rewrittenMatches)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendDedupCompleted(groupName string, collapsed int, dryRun bool) error {
	msg := s.formatDedupCompleted(groupName, collapsed)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendResultNotification(m *match.Match, dryRun bool) error {
	msg := s.formatResultNotification(m)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(groupName string, aggregates []stats.AggregatedStat, dryRun bool) error {
	msg := s.formatLeaderboard(groupName, aggregates)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(groupName string, aggregates []stats.AggregatedStat) (any, error) {
	return s.formatLeaderboard(groupName, aggregates), nil
}

// formatMergeCompleted creates the Slack message announcing a finished identity merge.
func (s *Notifier) formatMergeCompleted(groupName, sourceName, targetName string, rewrittenMatches int) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Guest player merged!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Group: %s\n%s is now %s", groupName, sourceName, targetName)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	contextText := fmt.Sprintf("%d matches rewritten", rewrittenMatches)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatDedupCompleted creates the Slack message announcing a deduplication run.
func (s *Notifier) formatDedupCompleted(groupName string, collapsed int) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🧹 Guest list cleaned up!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var detailsText string
	if collapsed == 0 {
		detailsText = fmt.Sprintf("Group: %s\nNo duplicate guests found.", groupName)
	} else {
		detailsText = fmt.Sprintf("Group: %s\n%d duplicate guest entries collapsed.", groupName, collapsed)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatResultNotification creates the Slack message for a finished match using Block Kit.
func (s *Notifier) formatResultNotification(m *match.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Match finished!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := m.Venue
	if m.Date != "" {
		if detailsText != "" {
			detailsText += ", "
		}
		detailsText += m.Date
	}
	if detailsText != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))
	}

	if m.Score != nil {
		scoreText := fmt.Sprintf("%s %d - %d %s", m.TeamAName, m.Score.A, m.Score.B, m.TeamBName)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", scoreText, true, false), nil, nil))
	}

	scorers := scorerLines(m)
	if len(scorers) > 0 {
		scorersText := "Goals:\n" + strings.Join(scorers, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", scorersText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

func scorerLines(m *match.Match) []string {
	var lines []string
	for _, side := range []match.TeamSide{match.TeamA, match.TeamB} {
		for _, p := range m.Roster(side) {
			line, ok := m.Stats[p.ID]
			if !ok || line.Goals == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("• %s: %d", p.Name, line.Goals))
		}
	}
	return lines
}

// formatLeaderboard creates a Slack message to display the group leaderboard.
func (s *Notifier) formatLeaderboard(groupName string, aggregates []stats.AggregatedStat) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s Leaderboard 🏆", groupName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(aggregates) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, stat := range aggregates {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> Goals: %d | Assists: %d | Matches: %d | Rating: %s",
			rank,
			medal,
			stat.Name,
			stat.Goals,
			stat.Assists,
			stat.Matches,
			stat.AverageRating,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
