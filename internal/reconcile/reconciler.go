// Package reconcile rewrites player identity across a group's match history.
// Merging a guest into a registered user (or another guest) and collapsing
// duplicate guest entries both walk every match of the group and rewrite
// rosters, stat lines and rating votes so aggregates stay conserved.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/halisahaclub/halisaha/internal/group"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/metrics"
	"github.com/halisahaclub/halisaha/internal/pubsub"
	"github.com/sourcegraph/conc/pool"
)

// Service performs identity rewrites over the group and match stores.
type Service struct {
	groups   group.GroupStore
	matches  match.MatchStore
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	pubsub   pubsub.PubSubClient
}

// New creates a new reconcile Service.
func New(
	groups group.GroupStore,
	matches match.MatchStore,
	m metrics.Metrics,
	counters metrics.MetricsStore,
	ps pubsub.PubSubClient,
) *Service {
	return &Service{
		groups:   groups,
		matches:  matches,
		metrics:  m,
		counters: counters,
		pubsub:   ps,
	}
}

// MergeIdentity folds the source guest into the target identity across every
// match of the group, then removes the source from the guest list. When the
// target is a registered user they are added to the member list. Running the
// same merge twice is a no-op the second time: once the source ID is gone from
// rosters and maps there is nothing left to rewrite.
func (s *Service) MergeIdentity(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	if req.TargetID == "" {
		return nil, ErrMissingTarget
	}
	if req.SourceID == req.TargetID {
		return nil, ErrSameIdentity
	}
	if !(match.PlayerRef{ID: req.SourceID}).IsGuest() {
		return nil, ErrSourceNotGuest
	}

	s.metrics.IncMergeRuns()
	start := time.Now()

	result, err := s.merge(ctx, req)
	if err != nil {
		s.metrics.IncMergeFailures()
		return nil, err
	}

	s.metrics.ObserveRewriteDuration(time.Since(start).Seconds())
	return result, nil
}

func (s *Service) merge(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	g, err := s.groups.Get(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	sourceName := req.SourceID
	if guest, ok := g.GuestByID(req.SourceID); ok {
		sourceName = guest.Name
	}
	if req.TargetName == "" {
		guest, ok := g.GuestByID(req.TargetID)
		if !ok {
			// Without a name the rewrite would stamp blank roster entries.
			return nil, ErrUnresolvedTarget
		}
		req.TargetName = guest.Name
	}
	if req.TargetKind == "" {
		req.TargetKind = match.KindUser
		if (match.PlayerRef{ID: req.TargetID}).IsGuest() {
			req.TargetKind = match.KindGuest
		}
	}

	groupMatches, err := s.matches.ForGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]map[string]any)
	for _, m := range groupMatches {
		if fields, changed := rewriteForMerge(m, req); changed {
			updates[m.ID] = fields
		}
	}

	result := &MergeResult{
		RewrittenMatches: len(updates),
		SourceName:       sourceName,
		TargetName:       req.TargetName,
	}

	if req.DryRun {
		log.Info("[Dry Run] Would merge guest identity",
			"group", req.GroupID, "source", req.SourceID, "target", req.TargetID, "matches", len(updates))
		return result, nil
	}

	if err := s.writeMatches(ctx, updates); err != nil {
		return nil, err
	}

	if _, ok := g.GuestByID(req.SourceID); ok {
		kept := make([]group.GuestPlayer, 0, len(g.GuestPlayers))
		for _, guest := range g.GuestPlayers {
			if guest.ID != req.SourceID {
				kept = append(kept, guest)
			}
		}
		if err := s.groups.SetGuestList(ctx, req.GroupID, kept); err != nil {
			return nil, err
		}
	}

	if req.TargetKind == match.KindUser {
		if err := s.groups.AddMember(ctx, req.GroupID, req.TargetID); err != nil && !errors.Is(err, group.ErrAlreadyMember) {
			return nil, err
		}
	}

	s.counters.Increment(metrics.KeyMergesCompleted)
	log.Info("Merged guest identity",
		"group", req.GroupID, "source", req.SourceID, "target", req.TargetID, "matches", len(updates))

	s.announceMerge(g, req, result)
	return result, nil
}

// announceMerge publishes the merge event. Downstream announcements (Slack)
// happen in the push consumer, not here.
func (s *Service) announceMerge(g *group.Group, req MergeRequest, result *MergeResult) {
	event := pubsub.GuestMergedEvent{
		GroupID:          req.GroupID,
		GroupName:        g.Name,
		SourceID:         req.SourceID,
		SourceName:       result.SourceName,
		TargetID:         req.TargetID,
		TargetName:       result.TargetName,
		RewrittenMatches: result.RewrittenMatches,
	}
	if err := s.pubsub.SendMessage(string(pubsub.EventGuestMerged), event); err != nil {
		log.Error("Failed to publish merge event", "error", err, "group", req.GroupID)
	}
}

// writeMatches fans partial updates out over the match store. Each match is a
// single write so a failure leaves the other matches untouched but committed.
func (s *Service) writeMatches(ctx context.Context, updates map[string]map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	p := pool.New().WithErrors().WithContext(ctx)
	for matchID, fields := range updates {
		matchID, fields := matchID, fields
		p.Go(func(ctx context.Context) error {
			return s.matches.Update(ctx, matchID, fields)
		})
	}
	return p.Wait()
}

// rewriteForMerge computes the partial update replacing the source identity in
// a single match. Only the fields that actually change are returned.
func rewriteForMerge(m *match.Match, req MergeRequest) (map[string]any, bool) {
	fields := make(map[string]any)

	if teamA, changed := replaceInRoster(m.TeamA, req); changed {
		fields["teamA"] = teamA
	}
	if teamB, changed := replaceInRoster(m.TeamB, req); changed {
		fields["teamB"] = teamB
	}

	if line, ok := m.Stats[req.SourceID]; ok {
		stats := make(map[string]match.StatLine, len(m.Stats))
		for id, l := range m.Stats {
			if id != req.SourceID {
				stats[id] = l
			}
		}
		merged := stats[req.TargetID]
		merged.Goals += line.Goals
		merged.Assists += line.Assists
		merged.Saves += line.Saves
		stats[req.TargetID] = merged
		fields["stats"] = stats
	}

	if votes, ok := m.Ratings[req.SourceID]; ok {
		ratings := make(map[string]map[string]int, len(m.Ratings))
		for id, v := range m.Ratings {
			if id != req.SourceID {
				ratings[id] = v
			}
		}
		merged := make(map[string]int, len(votes))
		for voter, score := range ratings[req.TargetID] {
			merged[voter] = score
		}
		// A voter who rated both identities meant the guest; that score wins.
		for voter, score := range votes {
			merged[voter] = score
		}
		ratings[req.TargetID] = merged
		fields["ratings"] = ratings
	}

	return fields, len(fields) > 0
}

// replaceInRoster swaps the source entry for the target identity, keeping the
// goalkeeper flag and tactical coordinates of the original entry.
func replaceInRoster(roster []match.PlayerRef, req MergeRequest) ([]match.PlayerRef, bool) {
	changed := false
	out := make([]match.PlayerRef, len(roster))
	copy(out, roster)
	for i, ref := range out {
		if ref.ID != req.SourceID {
			continue
		}
		ref.Kind = req.TargetKind
		ref.ID = req.TargetID
		ref.Name = req.TargetName
		out[i] = ref
		changed = true
	}
	return out, changed
}
