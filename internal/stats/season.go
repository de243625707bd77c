package stats

import "github.com/halisahaclub/halisaha/internal/match"

// AllTime selects every played match regardless of season.
const AllTime = "all-time"

// FilterBySeason selects the group's played matches feeding the aggregator.
// seasonSelector is either AllTime or a season ID.
func FilterBySeason(matches []*match.Match, groupID, seasonSelector string) []*match.Match {
	var selected []*match.Match
	for _, m := range matches {
		if m.GroupID != groupID || m.Status != match.StatusPlayed {
			continue
		}
		if seasonSelector != AllTime && m.SeasonID != seasonSelector {
			continue
		}
		selected = append(selected, m)
	}
	return selected
}

// ScheduledMatches lists a group's upcoming fixtures for schedule views.
func ScheduledMatches(matches []*match.Match, groupID string) []*match.Match {
	var selected []*match.Match
	for _, m := range matches {
		if m.GroupID == groupID && m.Status == match.StatusScheduled {
			selected = append(selected, m)
		}
	}
	return selected
}
