package invite

import "errors"

// Collections invitations and join requests live in.
const (
	InvitationsCollection  = "invitations"
	JoinRequestsCollection = "joinRequests"
)

var (
	// ErrUnknownGuest is returned when inviting a guest the group doesn't have.
	ErrUnknownGuest = errors.New("no such guest in this group")
	// ErrNotPending is returned when acting on an already resolved invitation
	// or join request.
	ErrNotPending = errors.New("already resolved")
)

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation lets a registered user claim a guest identity in a group. An
// invitation without a guest ID is a plain membership invite.
type Invitation struct {
	ID         string           `json:"-"`
	GroupID    string           `json:"groupId"`
	GuestID    string           `json:"guestId,omitempty"`
	GuestName  string           `json:"guestName,omitempty"`
	CreatedBy  string           `json:"createdBy"`
	AcceptedBy string           `json:"acceptedBy,omitempty"`
	Status     InvitationStatus `json:"status"`
	CreatedAt  int64            `json:"createdAt"`
}

// JoinRequestStatus is the lifecycle state of a join request.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a user's request to join a group, resolved by an admin.
type JoinRequest struct {
	ID        string            `json:"-"`
	GroupID   string            `json:"groupId"`
	UserID    string            `json:"userId"`
	UserName  string            `json:"userName"`
	Status    JoinRequestStatus `json:"status"`
	CreatedAt int64             `json:"createdAt"`
}
