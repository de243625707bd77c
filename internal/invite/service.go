package invite

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/halisahaclub/halisaha/internal/docstore"
	"github.com/halisahaclub/halisaha/internal/group"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/halisahaclub/halisaha/internal/pubsub"
	"github.com/halisahaclub/halisaha/internal/reconcile"
)

type service struct {
	store  docstore.Store
	groups group.GroupStore
	merger merger
	pubsub pubsub.PubSubClient
}

// New creates a new invite Service.
func New(store docstore.Store, groups group.GroupStore, m merger, ps pubsub.PubSubClient) InviteService {
	return &service{
		store:  store,
		groups: groups,
		merger: m,
		pubsub: ps,
	}
}

func (s *service) CreateInvitation(ctx context.Context, groupID, guestID, createdBy string) (*Invitation, error) {
	inv := &Invitation{
		GroupID:   groupID,
		GuestID:   guestID,
		CreatedBy: createdBy,
		Status:    InvitationPending,
		CreatedAt: time.Now().UnixMilli(),
	}

	if guestID != "" {
		g, err := s.groups.Get(ctx, groupID)
		if err != nil {
			return nil, err
		}
		guest, ok := g.GuestByID(guestID)
		if !ok {
			return nil, ErrUnknownGuest
		}
		inv.GuestName = guest.Name
	}

	fields, err := docstore.FieldsOf(inv)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, InvitationsCollection, fields)
	if err != nil {
		return nil, err
	}
	inv.ID = id

	event := pubsub.InvitationCreatedEvent{GroupID: groupID, InvitationID: id, GuestID: guestID}
	if err := s.pubsub.SendMessage(string(pubsub.EventInvitationCreated), event); err != nil {
		log.Error("Failed to publish invitation event", "error", err, "invitation", id)
	}

	return inv, nil
}

func (s *service) Invitation(ctx context.Context, invitationID string) (*Invitation, error) {
	doc, err := s.store.Get(ctx, InvitationsCollection, invitationID)
	if err != nil {
		return nil, err
	}
	var inv Invitation
	if err := doc.DataTo(&inv); err != nil {
		return nil, err
	}
	inv.ID = doc.ID
	return &inv, nil
}

func (s *service) InvitationsForGroup(ctx context.Context, groupID string) ([]*Invitation, error) {
	docs, err := s.store.Query(ctx, InvitationsCollection, docstore.Where("groupId", docstore.OpEqual, groupID))
	if err != nil {
		return nil, err
	}
	invitations := make([]*Invitation, 0, len(docs))
	for _, doc := range docs {
		var inv Invitation
		if err := doc.DataTo(&inv); err != nil {
			return nil, err
		}
		inv.ID = doc.ID
		invitations = append(invitations, &inv)
	}
	return invitations, nil
}

// AcceptInvitation resolves a pending invitation. The identity merge runs
// before the invitation is marked accepted so a failed merge leaves the
// invitation pending and retryable.
func (s *service) AcceptInvitation(ctx context.Context, invitationID, userID, userName string) (*reconcile.MergeResult, error) {
	inv, err := s.Invitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.Status != InvitationPending {
		return nil, ErrNotPending
	}

	var result *reconcile.MergeResult
	if inv.GuestID != "" {
		result, err = s.merger.MergeIdentity(ctx, reconcile.MergeRequest{
			GroupID:    inv.GroupID,
			SourceID:   inv.GuestID,
			TargetID:   userID,
			TargetName: userName,
			TargetKind: match.KindUser,
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.groups.AddMember(ctx, inv.GroupID, userID); err != nil {
			return nil, err
		}
	}

	err = s.store.Update(ctx, InvitationsCollection, invitationID, map[string]any{
		"status":     string(InvitationAccepted),
		"acceptedBy": userID,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RevokeInvitation(ctx context.Context, invitationID string) error {
	inv, err := s.Invitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.Status != InvitationPending {
		return ErrNotPending
	}
	return s.store.Update(ctx, InvitationsCollection, invitationID, map[string]any{
		"status": string(InvitationRevoked),
	})
}

func (s *service) RequestToJoin(ctx context.Context, groupID, userID, userName string) (*JoinRequest, error) {
	g, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.IsMember(userID) {
		return nil, group.ErrAlreadyMember
	}

	req := &JoinRequest{
		GroupID:   groupID,
		UserID:    userID,
		UserName:  userName,
		Status:    JoinRequestPending,
		CreatedAt: time.Now().UnixMilli(),
	}
	fields, err := docstore.FieldsOf(req)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(ctx, JoinRequestsCollection, fields)
	if err != nil {
		return nil, err
	}
	req.ID = id
	return req, nil
}

func (s *service) JoinRequestsForGroup(ctx context.Context, groupID string) ([]*JoinRequest, error) {
	docs, err := s.store.Query(ctx, JoinRequestsCollection, docstore.Where("groupId", docstore.OpEqual, groupID))
	if err != nil {
		return nil, err
	}
	requests := make([]*JoinRequest, 0, len(docs))
	for _, doc := range docs {
		var req JoinRequest
		if err := doc.DataTo(&req); err != nil {
			return nil, err
		}
		req.ID = doc.ID
		requests = append(requests, &req)
	}
	return requests, nil
}

func (s *service) ApproveJoinRequest(ctx context.Context, requestID string) error {
	req, err := s.joinRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != JoinRequestPending {
		return ErrNotPending
	}
	if err := s.groups.AddMember(ctx, req.GroupID, req.UserID); err != nil {
		return err
	}
	return s.store.Update(ctx, JoinRequestsCollection, requestID, map[string]any{
		"status": string(JoinRequestApproved),
	})
}

func (s *service) RejectJoinRequest(ctx context.Context, requestID string) error {
	req, err := s.joinRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != JoinRequestPending {
		return ErrNotPending
	}
	return s.store.Update(ctx, JoinRequestsCollection, requestID, map[string]any{
		"status": string(JoinRequestRejected),
	})
}

func (s *service) joinRequest(ctx context.Context, requestID string) (*JoinRequest, error) {
	doc, err := s.store.Get(ctx, JoinRequestsCollection, requestID)
	if err != nil {
		return nil, err
	}
	var req JoinRequest
	if err := doc.DataTo(&req); err != nil {
		return nil, err
	}
	req.ID = doc.ID
	return &req, nil
}
