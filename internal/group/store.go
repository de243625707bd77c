package group

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/halisahaclub/halisaha/internal/docstore"
	"github.com/halisahaclub/halisaha/internal/names"
)

type store struct {
	docs docstore.Store
}

// New creates a GroupStore backed by the document store.
func New(docs docstore.Store) GroupStore {
	return &store{docs: docs}
}

func (s *store) Create(ctx context.Context, name, createdBy string) (*Group, error) {
	g := &Group{
		Name:         name,
		CreatedBy:    createdBy,
		Members:      []string{createdBy},
		Admins:       []string{createdBy},
		GuestPlayers: []GuestPlayer{},
		JoinCode:     newJoinCode(),
		CreatedAt:    time.Now().Unix(),
	}

	fields, err := docstore.FieldsOf(g)
	if err != nil {
		return nil, err
	}
	id, err := s.docs.Create(ctx, Collection, fields)
	if err != nil {
		return nil, err
	}
	g.ID = id
	log.Info("Created group", "groupID", id, "name", name, "createdBy", createdBy)
	return g, nil
}

func (s *store) Get(ctx context.Context, groupID string) (*Group, error) {
	doc, err := s.docs.Get(ctx, Collection, groupID)
	if err != nil {
		return nil, err
	}
	return decodeGroup(doc)
}

func (s *store) GroupsForMember(ctx context.Context, userID string) ([]*Group, error) {
	docs, err := s.docs.Query(ctx, Collection,
		docstore.Where("members", docstore.OpArrayContains, userID))
	if err != nil {
		return nil, err
	}
	return decodeGroups(docs), nil
}

func (s *store) JoinByCode(ctx context.Context, code, userID string) (*Group, error) {
	docs, err := s.docs.Query(ctx, Collection,
		docstore.Where("joinCode", docstore.OpEqual, strings.ToUpper(strings.TrimSpace(code))))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrInvalidJoinCode
	}

	g, err := decodeGroup(docs[0])
	if err != nil {
		return nil, err
	}
	if g.IsMember(userID) {
		return nil, ErrAlreadyMember
	}

	if err := s.AddMember(ctx, g.ID, userID); err != nil {
		return nil, err
	}
	g.Members = append(g.Members, userID)
	return g, nil
}

func (s *store) AddMember(ctx context.Context, groupID, userID string) error {
	return s.docs.Update(ctx, Collection, groupID, map[string]any{
		"members": docstore.ArrayUnion(userID),
	})
}

func (s *store) RemoveMember(ctx context.Context, groupID, userID string) error {
	// A leaving member also loses admin rights.
	return s.docs.Update(ctx, Collection, groupID, map[string]any{
		"members": docstore.ArrayRemove(userID),
		"admins":  docstore.ArrayRemove(userID),
	})
}

func (s *store) AddAdmin(ctx context.Context, groupID, userID string) error {
	return s.docs.Update(ctx, Collection, groupID, map[string]any{
		"admins": docstore.ArrayUnion(userID),
	})
}

func (s *store) RemoveAdmin(ctx context.Context, groupID, userID string) error {
	return s.docs.Update(ctx, Collection, groupID, map[string]any{
		"admins": docstore.ArrayRemove(userID),
	})
}

// AddGuest appends a new guest player after checking that no existing guest
// has the same normalized name. The stored name is the title-cased display
// form of the input.
func (s *store) AddGuest(ctx context.Context, groupID, rawName string) (GuestPlayer, error) {
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return GuestPlayer{}, err
	}

	displayName := names.ToDisplayForm(rawName)
	normalized := names.Normalize(displayName)
	for _, existing := range g.GuestPlayers {
		if names.Normalize(existing.Name) == normalized {
			return GuestPlayer{}, ErrDuplicateGuestName
		}
	}

	guest := GuestPlayer{ID: newGuestID(), Name: displayName}
	err = s.docs.Update(ctx, Collection, groupID, map[string]any{
		"guestPlayers": docstore.ArrayUnion(guest),
	})
	if err != nil {
		return GuestPlayer{}, err
	}
	log.Info("Added guest player", "groupID", groupID, "guestID", guest.ID, "name", guest.Name)
	return guest, nil
}

// RemoveGuest filters the guest out of the group's guest list. Match history
// is left untouched; readers fall back to the historically stored name for
// orphaned references.
func (s *store) RemoveGuest(ctx context.Context, groupID, guestID string) error {
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}

	kept := make([]GuestPlayer, 0, len(g.GuestPlayers))
	for _, guest := range g.GuestPlayers {
		if guest.ID != guestID {
			kept = append(kept, guest)
		}
	}
	return s.SetGuestList(ctx, groupID, kept)
}

func (s *store) SetGuestList(ctx context.Context, groupID string, guests []GuestPlayer) error {
	if guests == nil {
		guests = []GuestPlayer{}
	}
	return s.docs.Update(ctx, Collection, groupID, map[string]any{
		"guestPlayers": guests,
	})
}

func (s *store) StartSeason(ctx context.Context, groupID, seasonName string) (Season, error) {
	season := Season{
		ID:        fmt.Sprintf("%d", time.Now().UnixMilli()),
		Name:      seasonName,
		StartDate: time.Now().Format(time.RFC3339),
		Status:    SeasonActive,
	}

	err := s.docs.Update(ctx, Collection, groupID, map[string]any{
		"activeSeasonId": season.ID,
		"seasons":        docstore.ArrayUnion(season),
	})
	if err != nil {
		return Season{}, err
	}
	log.Info("Started season", "groupID", groupID, "seasonID", season.ID, "name", seasonName)
	return season, nil
}

func (s *store) EndSeason(ctx context.Context, groupID string) error {
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if g.ActiveSeasonID == "" {
		return ErrNoActiveSeason
	}

	seasons := make([]Season, len(g.Seasons))
	copy(seasons, g.Seasons)
	for i := range seasons {
		if seasons[i].ID == g.ActiveSeasonID {
			seasons[i].EndDate = time.Now().Format(time.RFC3339)
			seasons[i].Status = SeasonCompleted
		}
	}

	return s.docs.Update(ctx, Collection, groupID, map[string]any{
		"activeSeasonId": "",
		"seasons":        seasons,
	})
}

func (s *store) AssignJerseyNumber(ctx context.Context, groupID, playerID string, number int) error {
	return s.docs.Update(ctx, Collection, groupID, map[string]any{
		"jerseyNumbers." + playerID: number,
	})
}

func (s *store) Subscribe(userID string, fn func(groups []*Group)) func() {
	filters := []docstore.Filter{
		docstore.Where("members", docstore.OpArrayContains, userID),
	}
	return s.docs.Subscribe(Collection, filters, func(docs []docstore.Document) {
		fn(decodeGroups(docs))
	})
}

func decodeGroup(doc docstore.Document) (*Group, error) {
	var g Group
	if err := doc.DataTo(&g); err != nil {
		return nil, err
	}
	g.ID = doc.ID
	return &g, nil
}

func decodeGroups(docs []docstore.Document) []*Group {
	groups := make([]*Group, 0, len(docs))
	for _, doc := range docs {
		g, err := decodeGroup(doc)
		if err != nil {
			log.Error("Failed to decode group document", "error", err, "id", doc.ID)
			continue
		}
		groups = append(groups, g)
	}
	return groups
}

// newGuestID generates a group-scoped guest identifier. IDs follow the
// guest_<timestamp>_<random> pattern and are never reused once removed.
func newGuestID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return fmt.Sprintf("guest_%d_%s", time.Now().UnixMilli(), suffix)
}

func newJoinCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
