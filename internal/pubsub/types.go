package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventGuestMerged       EventType = "guest-merged"
	EventGuestsDeduped     EventType = "guests-deduped"
	EventMatchFinished     EventType = "match-finished"
	EventInvitationCreated EventType = "invitation-created"
)

// GuestMergedEvent is published after a guest identity merge completes. Names
// are denormalized so consumers can announce the merge without a group lookup.
type GuestMergedEvent struct {
	GroupID          string `msgpack:"group_id"`
	GroupName        string `msgpack:"group_name"`
	SourceID         string `msgpack:"source_id"`
	SourceName       string `msgpack:"source_name"`
	TargetID         string `msgpack:"target_id"`
	TargetName       string `msgpack:"target_name"`
	RewrittenMatches int    `msgpack:"rewritten_matches"`
}

// GuestsDedupedEvent is published after a guest deduplication run completes.
type GuestsDedupedEvent struct {
	GroupID   string `msgpack:"group_id"`
	GroupName string `msgpack:"group_name"`
	Collapsed int    `msgpack:"collapsed"`
}

// MatchFinishedEvent is published when a match result is recorded.
type MatchFinishedEvent struct {
	GroupID string `msgpack:"group_id"`
	MatchID string `msgpack:"match_id"`
	ScoreA  int    `msgpack:"score_a"`
	ScoreB  int    `msgpack:"score_b"`
}

// InvitationCreatedEvent is published when a group invitation is created.
type InvitationCreatedEvent struct {
	GroupID      string `msgpack:"group_id"`
	InvitationID string `msgpack:"invitation_id"`
	GuestID      string `msgpack:"guest_id,omitempty"`
}
