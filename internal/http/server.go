package http

import (
	"net/http"

	"github.com/halisahaclub/halisaha/internal/config"
	"github.com/halisahaclub/halisaha/internal/group"
	"github.com/halisahaclub/halisaha/internal/invite"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/metrics"
	"github.com/halisahaclub/halisaha/internal/notifier"
	"github.com/halisahaclub/halisaha/internal/pubsub"
	"github.com/halisahaclub/halisaha/internal/reconcile"
)

func NewServer(
	groups group.GroupStore,
	matches match.MatchStore,
	invites invite.InviteService,
	reconciler *reconcile.Service,
	n notifier.Notifier,
	ps pubsub.PubSubClient,
	metricsSvc metrics.Metrics,
	counters metrics.MetricsStore,
	metricsHandler http.Handler,
	cfg config.Config,
) *Server {
	server := &Server{
		Groups:         groups,
		Matches:        matches,
		Invites:        invites,
		Reconciler:     reconciler,
		Notifier:       n,
		PubSub:         ps,
		Metrics:        metricsSvc,
		Counters:       counters,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/counters", Chain(s.CountersHandler(), paramsMiddleware))

	s.Router.Handle("/groups", Chain(s.ListGroupsHandler(), paramsMiddleware))
	s.Router.Handle("/groups/create", Chain(s.CreateGroupHandler(), paramsMiddleware))
	s.Router.Handle("/groups/join", Chain(s.JoinGroupHandler(), paramsMiddleware))
	s.Router.Handle("/groups/guests/add", Chain(s.AddGuestHandler(), paramsMiddleware))
	s.Router.Handle("/groups/guests/remove", Chain(s.RemoveGuestHandler(), paramsMiddleware))
	s.Router.Handle("/groups/guests/dedup", Chain(s.DedupGuestsHandler(), paramsMiddleware))
	s.Router.Handle("/groups/merge", Chain(s.MergeIdentityHandler(), paramsMiddleware))
	s.Router.Handle("/groups/seasons/start", Chain(s.StartSeasonHandler(), paramsMiddleware))
	s.Router.Handle("/groups/seasons/end", Chain(s.EndSeasonHandler(), paramsMiddleware))
	s.Router.Handle("/groups/jersey", Chain(s.AssignJerseyHandler(), paramsMiddleware))

	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/create", Chain(s.CreateMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/finish", Chain(s.FinishMatchHandler(), paramsMiddleware))
	s.Router.Handle("/matches/toggle", Chain(s.ToggleRosterHandler(), paramsMiddleware))
	s.Router.Handle("/matches/rate", Chain(s.RatePlayerHandler(), paramsMiddleware))
	s.Router.Handle("/matches/assign-season", Chain(s.AssignSeasonHandler(), paramsMiddleware))

	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))

	s.Router.Handle("/invitations", Chain(s.ListInvitationsHandler(), paramsMiddleware))
	s.Router.Handle("/invitations/create", Chain(s.CreateInvitationHandler(), paramsMiddleware))
	s.Router.Handle("/invitations/accept", Chain(s.AcceptInvitationHandler(), paramsMiddleware))
	s.Router.Handle("/invitations/revoke", Chain(s.RevokeInvitationHandler(), paramsMiddleware))

	s.Router.Handle("/join-requests", Chain(s.ListJoinRequestsHandler(), paramsMiddleware))
	s.Router.Handle("/join-requests/create", Chain(s.RequestToJoinHandler(), paramsMiddleware))
	s.Router.Handle("/join-requests/approve", Chain(s.ApproveJoinRequestHandler(), paramsMiddleware))
	s.Router.Handle("/join-requests/reject", Chain(s.RejectJoinRequestHandler(), paramsMiddleware))

	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))

	s.Router.Handle("/pubsub/guest-merged", Chain(s.GuestMergedEventHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/guests-deduped", Chain(s.GuestsDedupedEventHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
