package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/halisahaclub/halisaha/internal/docstore"
	"github.com/halisahaclub/halisaha/internal/group"
	"github.com/halisahaclub/halisaha/internal/invite"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/reconcile"
	"github.com/halisahaclub/halisaha/internal/stats"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// CountersHandler exposes the persistent operational counters.
func (s *Server) CountersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Counters.GetAll()
		if err != nil {
			log.Error("Failed to read counters", "error", err)
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondData(w, counters)
	}
}

func (s *Server) ListGroupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			respondMessage(w, http.StatusBadRequest, msgGenericError)
			return
		}
		groups, err := s.Groups.GroupsForMember(r.Context(), userID)
		if err != nil {
			log.Error("Failed to list groups", "error", err, "userID", userID)
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondData(w, groups)
	}
}

func (s *Server) CreateGroupHandler() http.HandlerFunc {
	type request struct {
		Name   string `json:"name"`
		UserID string `json:"userId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		g, err := s.Groups.Create(r.Context(), req.Name, req.UserID)
		if err != nil {
			log.Error("Failed to create group", "error", err)
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondData(w, g)
	}
}

func (s *Server) JoinGroupHandler() http.HandlerFunc {
	type request struct {
		Code   string `json:"code"`
		UserID string `json:"userId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		g, err := s.Groups.JoinByCode(r.Context(), req.Code, req.UserID)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, g)
	}
}

func (s *Server) AddGuestHandler() http.HandlerFunc {
	type request struct {
		GroupID string `json:"groupId"`
		Name    string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		guest, err := s.Groups.AddGuest(r.Context(), req.GroupID, req.Name)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, guest)
	}
}

func (s *Server) RemoveGuestHandler() http.HandlerFunc {
	type request struct {
		GroupID string `json:"groupId"`
		GuestID string `json:"guestId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Groups.RemoveGuest(r.Context(), req.GroupID, req.GuestID); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

// DedupGuestsHandler collapses duplicate guest identities across the group.
func (s *Server) DedupGuestsHandler() http.HandlerFunc {
	type request struct {
		GroupID string `json:"groupId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := s.Reconciler.DeduplicateGuests(r.Context(), req.GroupID, isDryRunFromContext(r))
		if err != nil {
			log.Error("Guest deduplication failed", "error", err, "groupID", req.GroupID)
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, result)
	}
}

// MergeIdentityHandler folds a guest identity into a user or another guest.
func (s *Server) MergeIdentityHandler() http.HandlerFunc {
	type request struct {
		GroupID    string `json:"groupId"`
		SourceID   string `json:"sourceId"`
		TargetID   string `json:"targetId"`
		TargetName string `json:"targetName"`
		TargetKind string `json:"targetKind"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := s.Reconciler.MergeIdentity(r.Context(), reconcile.MergeRequest{
			GroupID:    req.GroupID,
			SourceID:   req.SourceID,
			TargetID:   req.TargetID,
			TargetName: req.TargetName,
			TargetKind: match.PlayerKind(req.TargetKind),
			DryRun:     isDryRunFromContext(r),
		})
		if err != nil {
			log.Error("Identity merge failed", "error", err, "groupID", req.GroupID)
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, result)
	}
}

func (s *Server) StartSeasonHandler() http.HandlerFunc {
	type request struct {
		GroupID string `json:"groupId"`
		Name    string `json:"name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		season, err := s.Groups.StartSeason(r.Context(), req.GroupID, req.Name)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, season)
	}
}

func (s *Server) EndSeasonHandler() http.HandlerFunc {
	type request struct {
		GroupID string `json:"groupId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Groups.EndSeason(r.Context(), req.GroupID); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

func (s *Server) AssignJerseyHandler() http.HandlerFunc {
	type request struct {
		GroupID  string `json:"groupId"`
		PlayerID string `json:"playerId"`
		Number   int    `json:"number"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Groups.AssignJerseyNumber(r.Context(), req.GroupID, req.PlayerID, req.Number); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupId")
		if groupID == "" {
			respondMessage(w, http.StatusBadRequest, msgGenericError)
			return
		}
		matches, err := s.Matches.ForGroup(r.Context(), groupID)
		if err != nil {
			log.Error("Failed to list matches", "error", err, "groupID", groupID)
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		if r.URL.Query().Get("scheduled") == "true" {
			matches = stats.ScheduledMatches(matches, groupID)
		}
		respondData(w, matches)
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m match.Match
		if !decodeJSON(w, r, &m) {
			return
		}
		created, err := s.Matches.Create(r.Context(), &m)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, created)
	}
}

func (s *Server) FinishMatchHandler() http.HandlerFunc {
	type request struct {
		MatchID      string                    `json:"matchId"`
		ScoreA       int                       `json:"scoreA"`
		ScoreB       int                       `json:"scoreB"`
		Stats        map[string]match.StatLine `json:"stats"`
		TeamA        []match.PlayerRef         `json:"teamA"`
		TeamB        []match.PlayerRef         `json:"teamB"`
		TeamAName    string                    `json:"teamAName"`
		TeamBName    string                    `json:"teamBName"`
		VideoURL     string                    `json:"videoUrl"`
		MatchSummary string                    `json:"matchSummary"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		err := s.Matches.Finish(r.Context(), req.MatchID, match.FinishRequest{
			ScoreA:       req.ScoreA,
			ScoreB:       req.ScoreB,
			Stats:        req.Stats,
			TeamA:        req.TeamA,
			TeamB:        req.TeamB,
			TeamAName:    req.TeamAName,
			TeamBName:    req.TeamBName,
			VideoURL:     req.VideoURL,
			MatchSummary: req.MatchSummary,
		})
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}

		m, err := s.Matches.Get(r.Context(), req.MatchID)
		if err == nil {
			if nerr := s.Notifier.SendResultNotification(m, isDryRunFromContext(r)); nerr != nil {
				log.Error("Failed to send result notification", "error", nerr, "matchID", req.MatchID)
			}
		}
		respondData(w, nil)
	}
}

func (s *Server) ToggleRosterHandler() http.HandlerFunc {
	type request struct {
		MatchID string          `json:"matchId"`
		Side    match.TeamSide  `json:"side"`
		Player  match.PlayerRef `json:"player"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Matches.ToggleRosterSpot(r.Context(), req.MatchID, req.Side, req.Player); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

func (s *Server) RatePlayerHandler() http.HandlerFunc {
	type request struct {
		MatchID  string `json:"matchId"`
		PlayerID string `json:"playerId"`
		VoterID  string `json:"voterId"`
		Score    int    `json:"score"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Matches.RatePlayer(r.Context(), req.MatchID, req.PlayerID, req.VoterID, req.Score); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

func (s *Server) AssignSeasonHandler() http.HandlerFunc {
	type request struct {
		MatchID  string `json:"matchId"`
		SeasonID string `json:"seasonId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Matches.AssignSeason(r.Context(), req.MatchID, req.SeasonID); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

// LeaderboardHandler serves per-player aggregates for a group, optionally
// filtered by season and reordered for goalkeepers.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupId")
		if groupID == "" {
			respondMessage(w, http.StatusBadRequest, msgGenericError)
			return
		}
		season := r.URL.Query().Get("season")
		if season == "" {
			season = stats.AllTime
		}

		matches, err := s.Matches.ForGroup(r.Context(), groupID)
		if err != nil {
			log.Error("Failed to load matches for leaderboard", "error", err, "groupID", groupID)
			respondError(w, http.StatusInternalServerError, err)
			return
		}

		aggregates := stats.Calculate(stats.FilterBySeason(matches, groupID, season))
		if r.URL.Query().Get("goalkeepers") == "true" {
			aggregates = stats.SortForGoalkeepers(aggregates)
		}
		respondData(w, aggregates)
	}
}

func (s *Server) ListInvitationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupId")
		if groupID == "" {
			respondMessage(w, http.StatusBadRequest, msgGenericError)
			return
		}
		invitations, err := s.Invites.InvitationsForGroup(r.Context(), groupID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondData(w, invitations)
	}
}

func (s *Server) CreateInvitationHandler() http.HandlerFunc {
	type request struct {
		GroupID   string `json:"groupId"`
		GuestID   string `json:"guestId"`
		CreatedBy string `json:"createdBy"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		inv, err := s.Invites.CreateInvitation(r.Context(), req.GroupID, req.GuestID, req.CreatedBy)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, inv)
	}
}

func (s *Server) AcceptInvitationHandler() http.HandlerFunc {
	type request struct {
		InvitationID string `json:"invitationId"`
		UserID       string `json:"userId"`
		UserName     string `json:"userName"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := s.Invites.AcceptInvitation(r.Context(), req.InvitationID, req.UserID, req.UserName)
		if err != nil {
			log.Error("Failed to accept invitation", "error", err, "invitationID", req.InvitationID)
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, result)
	}
}

func (s *Server) RevokeInvitationHandler() http.HandlerFunc {
	type request struct {
		InvitationID string `json:"invitationId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Invites.RevokeInvitation(r.Context(), req.InvitationID); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

func (s *Server) ListJoinRequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupId")
		if groupID == "" {
			respondMessage(w, http.StatusBadRequest, msgGenericError)
			return
		}
		requests, err := s.Invites.JoinRequestsForGroup(r.Context(), groupID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondData(w, requests)
	}
}

func (s *Server) RequestToJoinHandler() http.HandlerFunc {
	type request struct {
		GroupID  string `json:"groupId"`
		UserID   string `json:"userId"`
		UserName string `json:"userName"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		joinReq, err := s.Invites.RequestToJoin(r.Context(), req.GroupID, req.UserID, req.UserName)
		if err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, joinReq)
	}
}

func (s *Server) ApproveJoinRequestHandler() http.HandlerFunc {
	type request struct {
		RequestID string `json:"requestId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Invites.ApproveJoinRequest(r.Context(), req.RequestID); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

func (s *Server) RejectJoinRequestHandler() http.HandlerFunc {
	type request struct {
		RequestID string `json:"requestId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := s.Invites.RejectJoinRequest(r.Context(), req.RequestID); err != nil {
			respondError(w, statusFor(err), err)
			return
		}
		respondData(w, nil)
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
// The command text is the group ID.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		groupID := r.FormValue("text")
		if groupID == "" {
			groupID = r.URL.Query().Get("groupId")
		}
		if groupID == "" {
			http.Error(w, "Group ID is required.", http.StatusBadRequest)
			return
		}

		g, err := s.Groups.Get(r.Context(), groupID)
		if err != nil {
			http.Error(w, "Failed to get group", http.StatusInternalServerError)
			log.Error("Failed to get group for leaderboard command", "error", err, "groupID", groupID)
			return
		}
		matches, err := s.Matches.ForGroup(r.Context(), groupID)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches for leaderboard command", "error", err, "groupID", groupID)
			return
		}

		aggregates := stats.Calculate(stats.FilterBySeason(matches, groupID, stats.AllTime))
		msg, err := s.Notifier.FormatLeaderboardResponse(g.Name, aggregates)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// decodeJSON decodes the request body, answering a generic Turkish error on
// malformed input. It reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		respondMessage(w, http.StatusMethodNotAllowed, msgGenericError)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Error("Failed to decode request body", "error", err, "url", r.URL.Path)
		respondMessage(w, http.StatusBadRequest, msgGenericError)
		return false
	}
	return true
}

func respondData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response{Success: true, Data: data}); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondMessage(w, status, messageFor(err))
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: false, Error: message}); err != nil {
		log.Error("Failed to write error response", "error", err)
	}
}

// messageFor maps domain errors onto the Turkish messages the clients show.
func messageFor(err error) string {
	switch {
	case errors.Is(err, group.ErrDuplicateGuestName):
		return msgDuplicateGuest
	case errors.Is(err, group.ErrAlreadyMember):
		return msgAlreadyMember
	case errors.Is(err, group.ErrInvalidJoinCode):
		return msgInvalidJoinCode
	case errors.Is(err, docstore.ErrNotFound):
		return msgNotFound
	case errors.Is(err, match.ErrInvalidRating):
		return msgInvalidRating
	case errors.Is(err, match.ErrAlreadyPlayed):
		return msgMatchPlayed
	case errors.Is(err, reconcile.ErrSameIdentity):
		return msgSamePlayer
	case errors.Is(err, reconcile.ErrUnresolvedTarget):
		return msgUnresolvedTarget
	case errors.Is(err, invite.ErrNotPending):
		return msgAlreadyResolved
	case errors.Is(err, invite.ErrUnknownGuest):
		return msgUnknownGuestPlayer
	default:
		return msgGenericError
	}
}

// statusFor picks the HTTP status for a domain error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, group.ErrDuplicateGuestName),
		errors.Is(err, group.ErrAlreadyMember),
		errors.Is(err, group.ErrInvalidJoinCode),
		errors.Is(err, group.ErrNoActiveSeason),
		errors.Is(err, match.ErrInvalidRating),
		errors.Is(err, match.ErrAlreadyPlayed),
		errors.Is(err, reconcile.ErrSameIdentity),
		errors.Is(err, reconcile.ErrSourceNotGuest),
		errors.Is(err, reconcile.ErrMissingTarget),
		errors.Is(err, reconcile.ErrUnresolvedTarget),
		errors.Is(err, invite.ErrNotPending),
		errors.Is(err, invite.ErrUnknownGuest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
