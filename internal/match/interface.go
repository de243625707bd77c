package match

import "context"

// FinishRequest carries everything recorded when a match is marked played.
// Rosters are included because stats entry happens on the same screen and may
// have reshuffled teams.
type FinishRequest struct {
	ScoreA       int
	ScoreB       int
	Stats        map[string]StatLine
	TeamA        []PlayerRef
	TeamB        []PlayerRef
	TeamAName    string
	TeamBName    string
	VideoURL     string
	MatchSummary string
}

// MatchStore defines the interface for interacting with match documents.
type MatchStore interface {
	Create(ctx context.Context, m *Match) (*Match, error)
	Get(ctx context.Context, matchID string) (*Match, error)
	ForGroup(ctx context.Context, groupID string) ([]*Match, error)
	Finish(ctx context.Context, matchID string, req FinishRequest) error
	AssignSeason(ctx context.Context, matchID, seasonID string) error
	// ToggleRosterSpot adds the player to the given side, removing them from
	// the other side first so a player is never on both rosters. Toggling a
	// player already on that side removes them instead.
	ToggleRosterSpot(ctx context.Context, matchID string, side TeamSide, player PlayerRef) error
	// RatePlayer records one voter's 1-10 score for a player without
	// clobbering sibling votes.
	RatePlayer(ctx context.Context, matchID, playerID, voterID string, score int) error
	// Update applies raw partial field updates; used by identity rewrites.
	Update(ctx context.Context, matchID string, fields map[string]any) error
	// Subscribe pushes the full current match list of a group on every change
	// to the matches collection.
	Subscribe(groupID string, fn func(matches []*Match)) (unsubscribe func())
}
