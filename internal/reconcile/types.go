package reconcile

import (
	"errors"

	"github.com/halisahaclub/halisaha/internal/match"
)

var (
	// ErrSameIdentity is returned when a merge names the same player twice.
	ErrSameIdentity = errors.New("source and target are the same player")
	// ErrSourceNotGuest is returned when the merge source is a registered user.
	ErrSourceNotGuest = errors.New("merge source must be a guest player")
	// ErrMissingTarget is returned when the merge target is not identified.
	ErrMissingTarget = errors.New("merge target is required")
	// ErrUnresolvedTarget is returned when the merge target has no display name
	// and is not a guest on the group's list to resolve one from.
	ErrUnresolvedTarget = errors.New("merge target name could not be resolved")
)

// MergeRequest names a guest identity to fold into another identity across a
// group's entire history.
type MergeRequest struct {
	GroupID  string
	SourceID string
	// TargetID is the surviving identity. It may be a registered user joining
	// the group or another guest.
	TargetID   string
	TargetName string
	TargetKind match.PlayerKind
	DryRun     bool
}

// MergeResult reports what a completed merge touched.
type MergeResult struct {
	RewrittenMatches int    `json:"rewrittenMatches"`
	SourceName       string `json:"sourceName"`
	TargetName       string `json:"targetName"`
}

// DedupResult reports what a deduplication run touched.
type DedupResult struct {
	Collapsed        int `json:"collapsed"`
	RewrittenMatches int `json:"rewrittenMatches"`
}
