package reconcile

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/halisahaclub/halisaha/internal/group"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/metrics"
	"github.com/halisahaclub/halisaha/internal/names"
	"github.com/halisahaclub/halisaha/internal/pubsub"
)

// dupSet is one group of guest IDs sharing a normalized name. The master is
// the identity every other ID in the set collapses into.
type dupSet struct {
	master string
	dups   []string
	name   string
}

// DeduplicateGuests collapses guests whose names normalize to the same string
// into a single identity per name. The guest-list entry listed first wins;
// for names that only survive in match history, the first roster appearance
// wins. A group with no duplicates is left completely untouched, so repeated
// runs converge after the first.
func (s *Service) DeduplicateGuests(ctx context.Context, groupID string, dryRun bool) (*DedupResult, error) {
	s.metrics.IncDedupRuns()
	start := time.Now()

	g, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	groupMatches, err := s.matches.ForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	sets := collectDuplicates(g, groupMatches)

	collapsed := 0
	for _, set := range sets {
		collapsed += len(set.dups)
	}
	result := &DedupResult{Collapsed: collapsed}
	if collapsed == 0 {
		return result, nil
	}

	updates := make(map[string]map[string]any)
	for _, m := range groupMatches {
		if fields, changed := rewriteForDedup(m, sets); changed {
			updates[m.ID] = fields
		}
	}
	result.RewrittenMatches = len(updates)

	if dryRun {
		log.Info("[Dry Run] Would deduplicate guests",
			"group", groupID, "collapsed", collapsed, "matches", len(updates))
		return result, nil
	}

	if err := s.writeMatches(ctx, updates); err != nil {
		s.metrics.IncMergeFailures()
		return nil, err
	}

	if err := s.groups.SetGuestList(ctx, groupID, rebuildGuestList(g, sets)); err != nil {
		return nil, err
	}

	s.metrics.ObserveRewriteDuration(time.Since(start).Seconds())
	s.metrics.AddDuplicatesCollapsed(collapsed)
	s.counters.Increment(metrics.KeyDedupRuns)
	s.counters.IncrementBy(metrics.KeyDuplicatesCollapsed, collapsed)
	log.Info("Deduplicated guests", "group", groupID, "collapsed", collapsed, "matches", len(updates))

	event := pubsub.GuestsDedupedEvent{GroupID: groupID, GroupName: g.Name, Collapsed: collapsed}
	if err := s.pubsub.SendMessage(string(pubsub.EventGuestsDeduped), event); err != nil {
		log.Error("Failed to publish dedup event", "error", err, "group", groupID)
	}

	return result, nil
}

// collectDuplicates gathers every guest identity from the guest list and the
// match rosters, grouped by normalized name, and keeps only the groups holding
// more than one ID. Guest-list order seeds the scan so the listed entry
// becomes the master over purely historical IDs.
func collectDuplicates(g *group.Group, groupMatches []*match.Match) []dupSet {
	type entry struct {
		ids   []string
		names []string
		seen  map[string]bool
	}
	byName := make(map[string]*entry)
	var order []string

	add := func(id, name string) {
		key := names.Normalize(name)
		if key == "" || id == "" {
			return
		}
		e, ok := byName[key]
		if !ok {
			e = &entry{seen: make(map[string]bool)}
			byName[key] = e
			order = append(order, key)
		}
		if !e.seen[id] {
			e.seen[id] = true
			e.ids = append(e.ids, id)
			e.names = append(e.names, name)
		}
	}

	for _, guest := range g.GuestPlayers {
		add(guest.ID, guest.Name)
	}
	for _, m := range groupMatches {
		for _, side := range []match.TeamSide{match.TeamA, match.TeamB} {
			for _, ref := range m.Roster(side) {
				if ref.IsGuest() {
					add(ref.ID, ref.Name)
				}
			}
		}
	}

	var sets []dupSet
	for _, key := range order {
		e := byName[key]
		if len(e.ids) < 2 {
			continue
		}
		sets = append(sets, dupSet{
			master: e.ids[0],
			dups:   e.ids[1:],
			name:   names.ToDisplayForm(e.names[0]),
		})
	}
	return sets
}

// rewriteForDedup computes the partial update collapsing every duplicate set
// inside a single match. Only the fields that actually change are returned.
func rewriteForDedup(m *match.Match, sets []dupSet) (map[string]any, bool) {
	aliases := make(map[string]string)
	canonical := make(map[string]string)
	for _, set := range sets {
		canonical[set.master] = set.name
		for _, id := range set.dups {
			aliases[id] = set.master
		}
	}

	fields := make(map[string]any)
	if teamA, changed := collapseRoster(m.TeamA, aliases, canonical); changed {
		fields["teamA"] = teamA
	}
	if teamB, changed := collapseRoster(m.TeamB, aliases, canonical); changed {
		fields["teamB"] = teamB
	}

	if stats, changed := collapseStats(m.Stats, sets); changed {
		fields["stats"] = stats
	}
	if ratings, changed := collapseRatings(m.Ratings, sets); changed {
		fields["ratings"] = ratings
	}

	return fields, len(fields) > 0
}

// collapseRoster rewrites duplicate entries to the master identity and drops
// repeat occurrences, keeping the position of the first one. A merged entry is
// a goalkeeper if any of its occurrences was.
func collapseRoster(roster []match.PlayerRef, aliases, canonical map[string]string) ([]match.PlayerRef, bool) {
	changed := false
	out := make([]match.PlayerRef, 0, len(roster))
	position := make(map[string]int)

	for _, ref := range roster {
		if master, ok := aliases[ref.ID]; ok {
			ref.ID = master
			changed = true
		}
		name, isMaster := canonical[ref.ID]
		if !isMaster {
			out = append(out, ref)
			continue
		}
		if pos, ok := position[ref.ID]; ok {
			if ref.IsGoalkeeper && !out[pos].IsGoalkeeper {
				out[pos].IsGoalkeeper = true
			}
			changed = true
			continue
		}
		if ref.Name != name {
			ref.Name = name
			changed = true
		}
		ref.Kind = match.KindGuest
		position[ref.ID] = len(out)
		out = append(out, ref)
	}
	return out, changed
}

// collapseStats folds duplicate stat lines into the master's line.
func collapseStats(stats map[string]match.StatLine, sets []dupSet) (map[string]match.StatLine, bool) {
	changed := false
	out := make(map[string]match.StatLine, len(stats))
	for id, line := range stats {
		out[id] = line
	}
	for _, set := range sets {
		for _, id := range set.dups {
			line, ok := out[id]
			if !ok {
				continue
			}
			merged := out[set.master]
			merged.Goals += line.Goals
			merged.Assists += line.Assists
			merged.Saves += line.Saves
			out[set.master] = merged
			delete(out, id)
			changed = true
		}
	}
	return out, changed
}

// collapseRatings folds duplicate vote maps into the master's map. Duplicate
// votes overwrite the master's vote for the same voter, in set order, the same
// precedence a source identity gets in a merge.
func collapseRatings(ratings map[string]map[string]int, sets []dupSet) (map[string]map[string]int, bool) {
	changed := false
	out := make(map[string]map[string]int, len(ratings))
	for id, votes := range ratings {
		out[id] = votes
	}
	for _, set := range sets {
		var merged map[string]int
		for _, id := range set.dups {
			votes, ok := out[id]
			if !ok {
				continue
			}
			if merged == nil {
				merged = make(map[string]int, len(out[set.master])+len(votes))
				for voter, score := range out[set.master] {
					merged[voter] = score
				}
			}
			for voter, score := range votes {
				merged[voter] = score
			}
			delete(out, id)
			changed = true
		}
		if merged != nil {
			out[set.master] = merged
		}
	}
	return out, changed
}

// rebuildGuestList rewrites the guest list with one entry per identity. The
// master keeps its slot; duplicates vanish; masters that only ever appeared
// on match rosters are appended so history stays attributable.
func rebuildGuestList(g *group.Group, sets []dupSet) []group.GuestPlayer {
	aliases := make(map[string]string)
	canonical := make(map[string]string)
	for _, set := range sets {
		canonical[set.master] = set.name
		for _, id := range set.dups {
			aliases[id] = set.master
		}
	}

	out := make([]group.GuestPlayer, 0, len(g.GuestPlayers))
	seen := make(map[string]bool)
	for _, guest := range g.GuestPlayers {
		id := guest.ID
		if master, ok := aliases[id]; ok {
			id = master
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		name := guest.Name
		if cn, ok := canonical[id]; ok {
			name = cn
		}
		out = append(out, group.GuestPlayer{ID: id, Name: name})
	}
	for _, set := range sets {
		if !seen[set.master] {
			seen[set.master] = true
			out = append(out, group.GuestPlayer{ID: set.master, Name: set.name})
		}
	}
	return out
}
