package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/metrics"
	"github.com/halisahaclub/halisaha/internal/stats"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

// Test one of the public methods to ensure it calls the private sender.
func TestSendMergeCompleted_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	err := notifier.SendMergeCompleted("Salı Maçları", "Mehmet (Misafir)", "Mehmet Yılmaz", 7, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendMergeCompleted")
}

func TestFormatMergeCompleted(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	msg := client.formatMergeCompleted("Salı Maçları", "Mehmet (Misafir)", "Mehmet Yılmaz", 7)
	require.Len(t, msg.Blocks.BlockSet, 3, "Expected 3 blocks")

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "First block should be a HeaderBlock")
	assert.Equal(t, "⚽ Guest player merged!", header.Text.Text)

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok, "Second block should be a SectionBlock")
	assert.Equal(t, "Group: Salı Maçları\nMehmet (Misafir) is now Mehmet Yılmaz", details.Text.Text)

	contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	require.True(t, ok, "Third block should be a ContextBlock")
	require.Len(t, contextBlock.ContextElements.Elements, 1)

	rewriteElement, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "7 matches rewritten", rewriteElement.Text)
}

func TestFormatDedupCompleted(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("reports collapsed duplicates", func(t *testing.T) {
		msg := client.formatDedupCompleted("Salı Maçları", 2)
		require.Len(t, msg.Blocks.BlockSet, 2)

		details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "Group: Salı Maçları\n2 duplicate guest entries collapsed.", details.Text.Text)
	})

	t.Run("reports a clean guest list", func(t *testing.T) {
		msg := client.formatDedupCompleted("Salı Maçları", 0)
		require.Len(t, msg.Blocks.BlockSet, 2)

		details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "Group: Salı Maçları\nNo duplicate guests found.", details.Text.Text)
	})
}

func TestFormatResultNotification(t *testing.T) {
	m := &match.Match{
		Venue:     "Yıldız Halı Saha",
		Date:      "2026-03-10T20:00:00Z",
		TeamAName: "Kırmızı",
		TeamBName: "Beyaz",
		Status:    match.StatusPlayed,
		Score:     &match.Score{A: 3, B: 1},
		TeamA: []match.PlayerRef{
			{Kind: match.KindUser, ID: "u1", Name: "Ali"},
		},
		TeamB: []match.PlayerRef{
			{Kind: match.KindGuest, ID: "guest_1_abcde", Name: "Can"},
		},
		Stats: map[string]match.StatLine{
			"u1":            {Goals: 2},
			"guest_1_abcde": {Goals: 1},
		},
	}
	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(m)

	require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks")

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, "⚽ Match finished!", header.Text.Text)

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Yıldız Halı Saha, 2026-03-10T20:00:00Z", details.Text.Text)

	score, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Kırmızı 3 - 1 Beyaz", score.Text.Text)

	scorers, ok := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Goals:\n• Ali: 2\n• Can: 1", scorers.Text.Text)
}

func TestFormatLeaderboard(t *testing.T) {
	t.Run("displays leaderboard with stats", func(t *testing.T) {
		aggregates := []stats.AggregatedStat{
			{Name: "Ali", Goals: 12, Assists: 4, Matches: 10, AverageRating: "8.2"},
			{Name: "Veli", Goals: 8, Assists: 9, Matches: 10, AverageRating: "7.4"},
			{Name: "Can", Goals: 5, Assists: 2, Matches: 9, AverageRating: "-"},
		}

		client := &Notifier{channelID: "C123"}
		msg := client.formatLeaderboard("Salı Maçları", aggregates)

		require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks (header + 3 players)")

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Salı Maçları Leaderboard 🏆", header.Text.Text)

		player1, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player1.Text.Text, "1. 🥇 Ali")
		assert.Contains(t, player1.Text.Text, "> Goals: 12 | Assists: 4 | Matches: 10 | Rating: 8.2")

		player2, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player2.Text.Text, "2. 🥈 Veli")

		player3, ok := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player3.Text.Text, "3. 🥉 Can")
		assert.Contains(t, player3.Text.Text, "Rating: -")
	})

	t.Run("displays message when no stats are available", func(t *testing.T) {
		client := &Notifier{channelID: "C123"}
		msg := client.formatLeaderboard("Salı Maçları", nil)

		require.Len(t, msg.Blocks.BlockSet, 2, "Expected 2 blocks (header + message)")

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No stats available yet. Go play some matches!", message.Text.Text)
	})
}
