package group

import "context"

// GroupStore defines the interface for interacting with group documents.
type GroupStore interface {
	Create(ctx context.Context, name, createdBy string) (*Group, error)
	Get(ctx context.Context, groupID string) (*Group, error)
	GroupsForMember(ctx context.Context, userID string) ([]*Group, error)
	JoinByCode(ctx context.Context, code, userID string) (*Group, error)
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	AddAdmin(ctx context.Context, groupID, userID string) error
	RemoveAdmin(ctx context.Context, groupID, userID string) error
	AddGuest(ctx context.Context, groupID, rawName string) (GuestPlayer, error)
	RemoveGuest(ctx context.Context, groupID, guestID string) error
	SetGuestList(ctx context.Context, groupID string, guests []GuestPlayer) error
	StartSeason(ctx context.Context, groupID, seasonName string) (Season, error)
	EndSeason(ctx context.Context, groupID string) error
	AssignJerseyNumber(ctx context.Context, groupID, playerID string, number int) error
	// Subscribe pushes the current set of groups the user belongs to on every
	// change to the groups collection.
	Subscribe(userID string, fn func(groups []*Group)) (unsubscribe func())
}
