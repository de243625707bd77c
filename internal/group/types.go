package group

import (
	"errors"
	"slices"
)

// Collection is the document collection groups live in.
const Collection = "groups"

var (
	// ErrDuplicateGuestName is returned when a new guest's normalized name
	// collides with an existing guest in the same group.
	ErrDuplicateGuestName = errors.New("a guest with that name already exists")
	// ErrAlreadyMember is returned when joining a group the user is in.
	ErrAlreadyMember = errors.New("already a member of this group")
	// ErrInvalidJoinCode is returned when no group matches a join code.
	ErrInvalidJoinCode = errors.New("invalid join code")
	// ErrNoActiveSeason is returned when ending a season while none is active.
	ErrNoActiveSeason = errors.New("no active season")
)

// SeasonStatus is the lifecycle state of a season.
type SeasonStatus string

const (
	SeasonActive    SeasonStatus = "active"
	SeasonCompleted SeasonStatus = "completed"
)

// Season is a named stretch of a group's match history.
type Season struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate,omitempty"`
	Status    SeasonStatus `json:"status"`
}

// GuestPlayer is a player without an account, identified only by a
// group-scoped ID and a display name. Guests are referenced from match
// rosters and stat maps exactly like registered users.
type GuestPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Group is a halısaha group document.
type Group struct {
	ID             string         `json:"-"`
	Name           string         `json:"name"`
	CreatedBy      string         `json:"createdBy"`
	Members        []string       `json:"members"`
	Admins         []string       `json:"admins"`
	GuestPlayers   []GuestPlayer  `json:"guestPlayers"`
	JoinCode       string         `json:"joinCode"`
	ActiveSeasonID string         `json:"activeSeasonId,omitempty"`
	Seasons        []Season       `json:"seasons,omitempty"`
	JerseyNumbers  map[string]int `json:"jerseyNumbers,omitempty"`
	CreatedAt      int64          `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the user may perform admin actions. The creator is
// always an admin even when absent from the admins list.
func (g *Group) IsAdmin(userID string) bool {
	return userID == g.CreatedBy || slices.Contains(g.Admins, userID)
}

// IsMember reports whether the user belongs to the group.
func (g *Group) IsMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}

// GuestByID looks a guest up in the group's guest list.
func (g *Group) GuestByID(guestID string) (GuestPlayer, bool) {
	for _, guest := range g.GuestPlayers {
		if guest.ID == guestID {
			return guest, true
		}
	}
	return GuestPlayer{}, false
}

// ActiveSeason returns the season named by ActiveSeasonID, if any.
func (g *Group) ActiveSeason() (Season, bool) {
	if g.ActiveSeasonID == "" {
		return Season{}, false
	}
	for _, season := range g.Seasons {
		if season.ID == g.ActiveSeasonID {
			return season, true
		}
	}
	return Season{}, false
}
