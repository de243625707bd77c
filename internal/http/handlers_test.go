package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/halisahaclub/halisaha/internal/config"
	"github.com/halisahaclub/halisaha/internal/database"
	"github.com/halisahaclub/halisaha/internal/docstore"
	"github.com/halisahaclub/halisaha/internal/group"
	"github.com/halisahaclub/halisaha/internal/invite"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/metrics"
	"github.com/halisahaclub/halisaha/internal/notifier"
	"github.com/halisahaclub/halisaha/internal/pubsub"
	"github.com/halisahaclub/halisaha/internal/reconcile"
	"github.com/halisahaclub/halisaha/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, n notifier.Notifier) *Server {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	store := docstore.New(db)
	groups := group.New(store)
	matches := match.New(store)
	counters := metrics.New(db)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	pubsubMock := pubsub.NewMock("TEST")

	reconciler := reconcile.New(groups, matches, metricsSvc, counters, pubsubMock)
	invites := invite.New(store, groups, reconciler, pubsubMock)

	return NewServer(groups, matches, invites, reconciler, n, pubsubMock, metricsSvc, counters, metricsHandler, config.Config{})
}

func postJSON(t *testing.T, server *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) response {
	t.Helper()

	var resp response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestCreateAndListGroups(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())

	rr := postJSON(t, server, "/groups/create", map[string]string{"name": "Salı Maçları", "userId": "u1"})
	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	assert.True(t, resp.Success)

	req, err := http.NewRequest("GET", "/groups?userId=u1", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Salı Maçları")
}

func TestMergeIdentityHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	ctx := context.Background()

	g, err := server.Groups.Create(ctx, "Salı Maçları", "u1")
	require.NoError(t, err)
	guestID := "guest_100_aaaaa"
	require.NoError(t, server.Groups.SetGuestList(ctx, g.ID, []group.GuestPlayer{{ID: guestID, Name: "Mehmet"}}))

	m, err := server.Matches.Create(ctx, &match.Match{
		GroupID: g.ID,
		TeamA:   []match.PlayerRef{{Kind: match.KindGuest, ID: guestID, Name: "Mehmet"}},
	})
	require.NoError(t, err)

	rr := postJSON(t, server, "/groups/merge", map[string]string{
		"groupId":    g.ID,
		"sourceId":   guestID,
		"targetId":   "u9",
		"targetName": "Mehmet Yılmaz",
		"targetKind": "user",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"rewrittenMatches":1`)

	got, err := server.Matches.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.OnTeam(match.TeamA, "u9"))
}

func TestMergeIdentityHandlerSameIdentity(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	ctx := context.Background()

	g, err := server.Groups.Create(ctx, "Salı Maçları", "u1")
	require.NoError(t, err)

	rr := postJSON(t, server, "/groups/merge", map[string]string{
		"groupId":  g.ID,
		"sourceId": "guest_100_aaaaa",
		"targetId": "guest_100_aaaaa",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, msgSamePlayer, resp.Error)
}

func TestDedupGuestsHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	ctx := context.Background()

	g, err := server.Groups.Create(ctx, "Salı Maçları", "u1")
	require.NoError(t, err)
	require.NoError(t, server.Groups.SetGuestList(ctx, g.ID, []group.GuestPlayer{
		{ID: "guest_100_aaaaa", Name: "Mehmet"},
		{ID: "guest_200_bbbbb", Name: "MEHMET"},
	}))

	rr := postJSON(t, server, "/groups/guests/dedup", map[string]string{"groupId": g.ID})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"collapsed":1`)

	gotGroup, err := server.Groups.Get(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, gotGroup.GuestPlayers, 1)
	assert.Equal(t, "Mehmet", gotGroup.GuestPlayers[0].Name)
}

func TestDedupGuestsHandlerDryRun(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	ctx := context.Background()

	g, err := server.Groups.Create(ctx, "Salı Maçları", "u1")
	require.NoError(t, err)
	require.NoError(t, server.Groups.SetGuestList(ctx, g.ID, []group.GuestPlayer{
		{ID: "guest_100_aaaaa", Name: "Mehmet"},
		{ID: "guest_200_bbbbb", Name: "MEHMET"},
	}))

	rr := postJSON(t, server, "/groups/guests/dedup?dry_run=true", map[string]string{"groupId": g.ID})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"collapsed":1`)

	// The dry run leaves the guest list untouched.
	gotGroup, err := server.Groups.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, gotGroup.GuestPlayers, 2)
}

func TestAddGuestHandlerDuplicateName(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	ctx := context.Background()

	g, err := server.Groups.Create(ctx, "Salı Maçları", "u1")
	require.NoError(t, err)

	rr := postJSON(t, server, "/groups/guests/add", map[string]string{"groupId": g.ID, "name": "Mehmet"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = postJSON(t, server, "/groups/guests/add", map[string]string{"groupId": g.ID, "name": "MEHMET"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, msgDuplicateGuest, resp.Error)

	gotGroup, err := server.Groups.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, gotGroup.GuestPlayers, 1)
}

func TestLeaderboardHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	ctx := context.Background()

	g, err := server.Groups.Create(ctx, "Salı Maçları", "u1")
	require.NoError(t, err)

	m, err := server.Matches.Create(ctx, &match.Match{
		GroupID: g.ID,
		TeamA:   []match.PlayerRef{{Kind: match.KindUser, ID: "u1", Name: "Ali"}},
		TeamB:   []match.PlayerRef{{Kind: match.KindUser, ID: "u2", Name: "Veli"}},
	})
	require.NoError(t, err)
	require.NoError(t, server.Matches.Finish(ctx, m.ID, match.FinishRequest{
		ScoreA: 3,
		ScoreB: 1,
		Stats:  map[string]match.StatLine{"u1": {Goals: 2, Assists: 1}},
		TeamA:  m.TeamA,
		TeamB:  m.TeamB,
	}))

	req, err := http.NewRequest("GET", "/leaderboard?groupId="+g.ID, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Ali")
	assert.Contains(t, rr.Body.String(), `"goals":2`)
}

func TestLeaderboardHandlerMissingGroup(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())

	req, err := http.NewRequest("GET", "/leaderboard", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAcceptInvitationHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())
	ctx := context.Background()

	g, err := server.Groups.Create(ctx, "Salı Maçları", "u1")
	require.NoError(t, err)
	guestID := "guest_100_aaaaa"
	require.NoError(t, server.Groups.SetGuestList(ctx, g.ID, []group.GuestPlayer{{ID: guestID, Name: "Mehmet"}}))

	inv, err := server.Invites.CreateInvitation(ctx, g.ID, guestID, "u1")
	require.NoError(t, err)

	rr := postJSON(t, server, "/invitations/accept", map[string]string{
		"invitationId": inv.ID,
		"userId":       "u9",
		"userName":     "Mehmet Yılmaz",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	gotGroup, err := server.Groups.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, gotGroup.IsMember("u9"))

	// A second accept answers with the already-resolved message.
	rr = postJSON(t, server, "/invitations/accept", map[string]string{
		"invitationId": inv.ID,
		"userId":       "u9",
		"userName":     "Mehmet Yılmaz",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse(t, rr)
	assert.Equal(t, msgAlreadyResolved, resp.Error)
}

func TestCountersHandler(t *testing.T) {
	server := setupTestServer(t, notifier.NewMock())

	server.Counters.Increment(metrics.KeyDedupRuns)

	req, err := http.NewRequest("GET", "/counters", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), metrics.KeyDedupRuns)
}

// postPushMessage wraps a msgpack event the way a push subscription delivers
// it and posts the envelope to the given endpoint.
func postPushMessage(t *testing.T, server *Server, path string, event any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := msgpack.Marshal(event)
	require.NoError(t, err)

	envelope := map[string]any{
		"subscription": "projects/test/subscriptions/test-sub",
		"message": map[string]string{
			"data": base64.StdEncoding.EncodeToString(payload),
		},
	}
	return postJSON(t, server, path, envelope)
}

func TestGuestMergedEventHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server := setupTestServer(t, mockNotifier)

	rr := postPushMessage(t, server, "/pubsub/guest-merged", pubsub.GuestMergedEvent{
		GroupID:          "group_1",
		GroupName:        "Salı Maçları",
		SourceID:         "guest_100_aaaaa",
		SourceName:       "Mehmet (Misafir)",
		TargetID:         "u9",
		TargetName:       "Mehmet Yılmaz",
		RewrittenMatches: 2,
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	require.Len(t, mockNotifier.SendMergeCompletedCalls, 1)
	call := mockNotifier.SendMergeCompletedCalls[0]
	assert.Equal(t, "Salı Maçları", call.GroupName)
	assert.Equal(t, "Mehmet (Misafir)", call.SourceName)
	assert.Equal(t, "Mehmet Yılmaz", call.TargetName)
	assert.Equal(t, 2, call.RewrittenMatches)
}

func TestGuestsDedupedEventHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server := setupTestServer(t, mockNotifier)

	rr := postPushMessage(t, server, "/pubsub/guests-deduped", pubsub.GuestsDedupedEvent{
		GroupID:   "group_1",
		GroupName: "Salı Maçları",
		Collapsed: 3,
	})

	assert.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, mockNotifier.SendDedupCompletedCalls, 1)
	call := mockNotifier.SendDedupCompletedCalls[0]
	assert.Equal(t, "Salı Maçları", call.GroupName)
	assert.Equal(t, 3, call.Collapsed)
}

func TestGuestMergedEventHandlerBadEnvelope(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server := setupTestServer(t, mockNotifier)

	rr := postJSON(t, server, "/pubsub/guest-merged", map[string]any{
		"message": map[string]string{"data": "not-base64!!"},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, mockNotifier.SendMergeCompletedCalls)
}

func TestLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatLeaderboardResponseFunc = func(groupName string, aggregates []stats.AggregatedStat) (any, error) {
		return slack.Message{}, nil
	}
	server := setupTestServer(t, mockNotifier)
	ctx := context.Background()

	g, err := server.Groups.Create(ctx, "Salı Maçları", "u1")
	require.NoError(t, err)

	t.Run("handles known group", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", g.ID)

		req, err := http.NewRequest("POST", "/slack/command/leaderboard", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("handles missing group id", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/slack/command/leaderboard", strings.NewReader(""))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
