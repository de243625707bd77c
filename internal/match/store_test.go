package match_test

import (
	"context"
	"testing"

	"github.com/halisahaclub/halisaha/internal/database"
	"github.com/halisahaclub/halisaha/internal/docstore"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) match.MatchStore {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	return match.New(docstore.New(db))
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateMatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m, err := store.Create(ctx, &match.Match{
		GroupID: "g1",
		Date:    "2026-03-10T20:00:00Z",
		Venue:   "Yıldız Halı Saha",
		TeamA: []match.PlayerRef{
			{Kind: match.KindUser, ID: "u1", Name: "Ali", X: floatPtr(150), Y: floatPtr(-3)},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusScheduled, got.Status)
	assert.Nil(t, got.Score)
	assert.Equal(t, "Takım A", got.TeamAName)
	assert.Equal(t, "Takım B", got.TeamBName)

	// Tactical coordinates are clamped to the pitch.
	require.Len(t, got.TeamA, 1)
	assert.Equal(t, 100.0, *got.TeamA[0].X)
	assert.Equal(t, 0.0, *got.TeamA[0].Y)
}

func TestFinishMatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m, err := store.Create(ctx, &match.Match{GroupID: "g1"})
	require.NoError(t, err)

	err = store.Finish(ctx, m.ID, match.FinishRequest{
		ScoreA:    3,
		ScoreB:    1,
		Stats:     map[string]match.StatLine{"u1": {Goals: 2, Assists: 1}},
		TeamA:     []match.PlayerRef{{Kind: match.KindUser, ID: "u1", Name: "Ali"}},
		TeamB:     []match.PlayerRef{{Kind: match.KindGuest, ID: "guest_1_abcde", Name: "Can"}},
		TeamAName: "Kırmızı",
		TeamBName: "Beyaz",
		VideoURL:  "https://example.com/v",
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.StatusPlayed, got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, match.Score{A: 3, B: 1}, *got.Score)
	assert.Equal(t, match.StatLine{Goals: 2, Assists: 1}, got.Stats["u1"])
	assert.Equal(t, "Kırmızı", got.TeamAName)
	assert.Equal(t, "https://example.com/v", got.VideoURL)
}

func TestToggleRosterSpot(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m, err := store.Create(ctx, &match.Match{GroupID: "g1"})
	require.NoError(t, err)

	player := match.PlayerRef{Kind: match.KindUser, ID: "u1", Name: "Ali"}

	require.NoError(t, store.ToggleRosterSpot(ctx, m.ID, match.TeamA, player))
	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.OnTeam(match.TeamA, "u1"))
	assert.False(t, got.OnTeam(match.TeamB, "u1"))

	// Moving to the other side removes the player from the first.
	require.NoError(t, store.ToggleRosterSpot(ctx, m.ID, match.TeamB, player))
	got, err = store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.OnTeam(match.TeamA, "u1"))
	assert.True(t, got.OnTeam(match.TeamB, "u1"))

	// Toggling the side they are already on removes them entirely.
	require.NoError(t, store.ToggleRosterSpot(ctx, m.ID, match.TeamB, player))
	got, err = store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.OnTeam(match.TeamA, "u1"))
	assert.False(t, got.OnTeam(match.TeamB, "u1"))
}

func TestToggleRosterSpotRejectsPlayedMatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m, err := store.Create(ctx, &match.Match{GroupID: "g1"})
	require.NoError(t, err)
	require.NoError(t, store.Finish(ctx, m.ID, match.FinishRequest{ScoreA: 1, ScoreB: 0}))

	err = store.ToggleRosterSpot(ctx, m.ID, match.TeamA, match.PlayerRef{ID: "u1"})
	assert.ErrorIs(t, err, match.ErrAlreadyPlayed)
}

func TestRatePlayer(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m, err := store.Create(ctx, &match.Match{GroupID: "g1"})
	require.NoError(t, err)

	require.NoError(t, store.RatePlayer(ctx, m.ID, "u1", "voter1", 8))
	require.NoError(t, store.RatePlayer(ctx, m.ID, "u1", "voter2", 6))
	require.NoError(t, store.RatePlayer(ctx, m.ID, "u2", "voter1", 9))

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"voter1": 8, "voter2": 6}, got.Ratings["u1"])
	assert.Equal(t, map[string]int{"voter1": 9}, got.Ratings["u2"])

	// Re-voting overwrites only that voter's score.
	require.NoError(t, store.RatePlayer(ctx, m.ID, "u1", "voter1", 4))
	got, err = store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"voter1": 4, "voter2": 6}, got.Ratings["u1"])

	assert.ErrorIs(t, store.RatePlayer(ctx, m.ID, "u1", "voter1", 0), match.ErrInvalidRating)
	assert.ErrorIs(t, store.RatePlayer(ctx, m.ID, "u1", "voter1", 11), match.ErrInvalidRating)
}

func TestAssignSeason(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	m, err := store.Create(ctx, &match.Match{GroupID: "g1"})
	require.NoError(t, err)

	require.NoError(t, store.AssignSeason(ctx, m.ID, "s1"))

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SeasonID)
}

func TestForGroup(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, &match.Match{GroupID: "g1"})
	require.NoError(t, err)
	_, err = store.Create(ctx, &match.Match{GroupID: "g1"})
	require.NoError(t, err)
	_, err = store.Create(ctx, &match.Match{GroupID: "g2"})
	require.NoError(t, err)

	matches, err := store.ForGroup(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestIsGuestFallsBackToPrefix(t *testing.T) {
	assert.True(t, match.PlayerRef{Kind: match.KindGuest, ID: "x"}.IsGuest())
	assert.False(t, match.PlayerRef{Kind: match.KindUser, ID: "guest_1_abcde"}.IsGuest())
	// Legacy rows without a kind field.
	assert.True(t, match.PlayerRef{ID: "guest_1_abcde"}.IsGuest())
	assert.False(t, match.PlayerRef{ID: "u1"}.IsGuest())
}
