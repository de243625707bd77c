package invite

import (
	"context"

	"github.com/halisahaclub/halisaha/internal/reconcile"
)

// InviteService manages invitations and join requests for groups.
type InviteService interface {
	// CreateInvitation creates an invitation. A non-empty guestID ties the
	// invitation to that guest so accepting it claims the guest's history.
	CreateInvitation(ctx context.Context, groupID, guestID, createdBy string) (*Invitation, error)
	Invitation(ctx context.Context, invitationID string) (*Invitation, error)
	InvitationsForGroup(ctx context.Context, groupID string) ([]*Invitation, error)
	// AcceptInvitation resolves the invitation for the given user. When the
	// invitation names a guest, the guest identity is merged into the user
	// across the group's match history; the merge result is returned.
	AcceptInvitation(ctx context.Context, invitationID, userID, userName string) (*reconcile.MergeResult, error)
	RevokeInvitation(ctx context.Context, invitationID string) error

	RequestToJoin(ctx context.Context, groupID, userID, userName string) (*JoinRequest, error)
	JoinRequestsForGroup(ctx context.Context, groupID string) ([]*JoinRequest, error)
	ApproveJoinRequest(ctx context.Context, requestID string) error
	RejectJoinRequest(ctx context.Context, requestID string) error
}

// merger is the slice of the reconcile service invitations need.
type merger interface {
	MergeIdentity(ctx context.Context, req reconcile.MergeRequest) (*reconcile.MergeResult, error)
}
