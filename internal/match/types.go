package match

import (
	"errors"
	"strings"
)

// Collection is the document collection matches live in.
const Collection = "matches"

var (
	// ErrInvalidRating is returned for rating votes outside 1-10.
	ErrInvalidRating = errors.New("rating must be between 1 and 10")
	// ErrAlreadyPlayed is returned when mutating the roster of a played match.
	ErrAlreadyPlayed = errors.New("match has already been played")
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPlayed    Status = "played"
)

// TeamSide names one of the two rosters.
type TeamSide string

const (
	TeamA TeamSide = "A"
	TeamB TeamSide = "B"
)

// PlayerKind discriminates registered users from guest players in persisted
// rosters. Historical rows written before the field existed are recognized by
// the guest ID prefix instead.
type PlayerKind string

const (
	KindUser  PlayerKind = "user"
	KindGuest PlayerKind = "guest"
)

const guestIDPrefix = "guest_"

// PlayerRef is a roster entry. The name is denormalized so orphaned
// references stay displayable after a guest is removed from the group.
// X and Y are tactical-board coordinates in percent, clamped to [0,100].
type PlayerRef struct {
	Kind         PlayerKind `json:"kind,omitempty"`
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	IsGoalkeeper bool       `json:"isGoalkeeper,omitempty"`
	X            *float64   `json:"x,omitempty"`
	Y            *float64   `json:"y,omitempty"`
}

// IsGuest reports whether the entry references a guest player, falling back
// to the legacy ID prefix when the kind field is absent.
func (p PlayerRef) IsGuest() bool {
	if p.Kind != "" {
		return p.Kind == KindGuest
	}
	return strings.HasPrefix(p.ID, guestIDPrefix)
}

// Score is a final match score.
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}

// StatLine holds one player's recorded numbers for a single match.
type StatLine struct {
	Goals   int `json:"goals"`
	Assists int `json:"assists"`
	Saves   int `json:"saves"`
}

// Match is a single fixture of a group.
//
// The stats and ratings maps are keyed by player ID. They are normally a
// subset of the roster IDs, but historical data may contain orphaned keys
// after partial failures; consumers must tolerate entries whose player is on
// neither roster.
type Match struct {
	ID           string                    `json:"-"`
	GroupID      string                    `json:"groupId"`
	SeasonID     string                    `json:"seasonId,omitempty"`
	Date         string                    `json:"date"`
	Venue        string                    `json:"venue"`
	TeamA        []PlayerRef               `json:"teamA"`
	TeamB        []PlayerRef               `json:"teamB"`
	TeamAName    string                    `json:"teamAName"`
	TeamBName    string                    `json:"teamBName"`
	Status       Status                    `json:"status"`
	Score        *Score                    `json:"score"`
	Stats        map[string]StatLine       `json:"stats"`
	Ratings      map[string]map[string]int `json:"ratings,omitempty"`
	VideoURL     string                    `json:"videoUrl,omitempty"`
	MatchSummary string                    `json:"matchSummary,omitempty"`
	CreatedAt    int64                     `json:"createdAt,omitempty"`
}

// OnTeam reports whether the player appears on the given side.
func (m *Match) OnTeam(side TeamSide, playerID string) bool {
	for _, p := range m.Roster(side) {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// Roster returns the given side's player list.
func (m *Match) Roster(side TeamSide) []PlayerRef {
	if side == TeamA {
		return m.TeamA
	}
	return m.TeamB
}
