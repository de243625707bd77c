// Package stats computes per-player aggregate statistics over a match list.
// Everything here is pure: aggregates are derived fresh on every call and
// never persisted.
package stats

import (
	"sort"
	"strconv"

	"github.com/halisahaclub/halisaha/internal/match"
)

// UnknownPlayerName is the display fallback for roster entries without a name.
const UnknownPlayerName = "Bilinmeyen"

// NoRating is the average-rating value for players who were never rated.
const NoRating = "-"

// AggregatedStat is one player's totals across a match list.
type AggregatedStat struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Matches       int    `json:"matches"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	Saves         int    `json:"saves"`
	CleanSheets   int    `json:"cleanSheets"`
	AverageRating string `json:"averageRating"`
}

type accumulator struct {
	stat         AggregatedStat
	ratingSum    float64
	ratedMatches int
}

// Calculate aggregates every player appearing on a roster in the given
// matches. Stat and rating entries whose player is on neither roster are
// orphans from partial failures and are ignored. The result is ordered by
// goals descending, ties keeping first-appearance order.
func Calculate(matches []*match.Match) []AggregatedStat {
	byID := make(map[string]*accumulator)
	var order []string

	ensure := func(p match.PlayerRef) *accumulator {
		acc, ok := byID[p.ID]
		if !ok {
			name := p.Name
			if name == "" {
				name = UnknownPlayerName
			}
			acc = &accumulator{stat: AggregatedStat{ID: p.ID, Name: name}}
			byID[p.ID] = acc
			order = append(order, p.ID)
		}
		return acc
	}

	for _, m := range matches {
		for _, p := range m.TeamA {
			if p.ID == "" {
				continue
			}
			acc := ensure(p)
			acc.stat.Matches++
			if m.Score != nil && m.Score.B == 0 {
				acc.stat.CleanSheets++
			}
		}
		for _, p := range m.TeamB {
			if p.ID == "" {
				continue
			}
			acc := ensure(p)
			acc.stat.Matches++
			if m.Score != nil && m.Score.A == 0 {
				acc.stat.CleanSheets++
			}
		}

		for playerID, line := range m.Stats {
			acc, ok := byID[playerID]
			if !ok {
				continue
			}
			acc.stat.Goals += line.Goals
			acc.stat.Assists += line.Assists
			acc.stat.Saves += line.Saves
		}

		for playerID, votes := range m.Ratings {
			acc, ok := byID[playerID]
			if !ok || len(votes) == 0 {
				continue
			}
			sum := 0
			for _, score := range votes {
				sum += score
			}
			acc.ratingSum += float64(sum) / float64(len(votes))
			acc.ratedMatches++
		}
	}

	result := make([]AggregatedStat, 0, len(order))
	for _, id := range order {
		acc := byID[id]
		if acc.ratedMatches == 0 {
			acc.stat.AverageRating = NoRating
		} else {
			acc.stat.AverageRating = strconv.FormatFloat(acc.ratingSum/float64(acc.ratedMatches), 'f', 1, 64)
		}
		result = append(result, acc.stat)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Goals > result[j].Goals
	})
	return result
}

// SortForGoalkeepers reorders a copy of the aggregate list for goalkeeper
// leaderboards: clean sheets descending, then saves descending.
func SortForGoalkeepers(aggregates []AggregatedStat) []AggregatedStat {
	sorted := make([]AggregatedStat, len(aggregates))
	copy(sorted, aggregates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CleanSheets != sorted[j].CleanSheets {
			return sorted[i].CleanSheets > sorted[j].CleanSheets
		}
		return sorted[i].Saves > sorted[j].Saves
	})
	return sorted
}
