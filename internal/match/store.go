package match

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/halisahaclub/halisaha/internal/docstore"
)

type store struct {
	docs docstore.Store
}

// New creates a MatchStore backed by the document store.
func New(docs docstore.Store) MatchStore {
	return &store{docs: docs}
}

func (s *store) Create(ctx context.Context, m *Match) (*Match, error) {
	m.Status = StatusScheduled
	m.Score = nil
	if m.Stats == nil {
		m.Stats = map[string]StatLine{}
	}
	if m.TeamAName == "" {
		m.TeamAName = "Takım A"
	}
	if m.TeamBName == "" {
		m.TeamBName = "Takım B"
	}
	m.TeamA = clampPositions(m.TeamA)
	m.TeamB = clampPositions(m.TeamB)
	m.CreatedAt = time.Now().Unix()

	fields, err := docstore.FieldsOf(m)
	if err != nil {
		return nil, err
	}
	id, err := s.docs.Create(ctx, Collection, fields)
	if err != nil {
		return nil, err
	}
	m.ID = id
	log.Info("Created match", "matchID", id, "groupID", m.GroupID, "date", m.Date)
	return m, nil
}

func (s *store) Get(ctx context.Context, matchID string) (*Match, error) {
	doc, err := s.docs.Get(ctx, Collection, matchID)
	if err != nil {
		return nil, err
	}
	return decodeMatch(doc)
}

func (s *store) ForGroup(ctx context.Context, groupID string) ([]*Match, error) {
	docs, err := s.docs.Query(ctx, Collection,
		docstore.Where("groupId", docstore.OpEqual, groupID))
	if err != nil {
		return nil, err
	}
	return decodeMatches(docs), nil
}

func (s *store) Finish(ctx context.Context, matchID string, req FinishRequest) error {
	stats := req.Stats
	if stats == nil {
		stats = map[string]StatLine{}
	}
	return s.docs.Update(ctx, Collection, matchID, map[string]any{
		"status":       StatusPlayed,
		"score":        Score{A: req.ScoreA, B: req.ScoreB},
		"stats":        stats,
		"teamA":        clampPositions(req.TeamA),
		"teamB":        clampPositions(req.TeamB),
		"teamAName":    req.TeamAName,
		"teamBName":    req.TeamBName,
		"videoUrl":     req.VideoURL,
		"matchSummary": req.MatchSummary,
	})
}

func (s *store) AssignSeason(ctx context.Context, matchID, seasonID string) error {
	return s.docs.Update(ctx, Collection, matchID, map[string]any{
		"seasonId": seasonID,
	})
}

func (s *store) ToggleRosterSpot(ctx context.Context, matchID string, side TeamSide, player PlayerRef) error {
	m, err := s.Get(ctx, matchID)
	if err != nil {
		return err
	}
	if m.Status == StatusPlayed {
		return ErrAlreadyPlayed
	}

	teamA := removePlayer(m.TeamA, player.ID)
	teamB := removePlayer(m.TeamB, player.ID)

	// Already on the chosen side means toggle off; otherwise add there.
	if !m.OnTeam(side, player.ID) {
		entry := clampPosition(player)
		if side == TeamA {
			teamA = append(teamA, entry)
		} else {
			teamB = append(teamB, entry)
		}
	}

	return s.docs.Update(ctx, Collection, matchID, map[string]any{
		"teamA": teamA,
		"teamB": teamB,
	})
}

func (s *store) RatePlayer(ctx context.Context, matchID, playerID, voterID string, score int) error {
	if score < 1 || score > 10 {
		return ErrInvalidRating
	}
	path := fmt.Sprintf("ratings.%s.%s", playerID, voterID)
	return s.docs.Update(ctx, Collection, matchID, map[string]any{path: score})
}

func (s *store) Update(ctx context.Context, matchID string, fields map[string]any) error {
	return s.docs.Update(ctx, Collection, matchID, fields)
}

func (s *store) Subscribe(groupID string, fn func(matches []*Match)) func() {
	filters := []docstore.Filter{
		docstore.Where("groupId", docstore.OpEqual, groupID),
	}
	return s.docs.Subscribe(Collection, filters, func(docs []docstore.Document) {
		fn(decodeMatches(docs))
	})
}

func decodeMatch(doc docstore.Document) (*Match, error) {
	var m Match
	if err := doc.DataTo(&m); err != nil {
		return nil, err
	}
	m.ID = doc.ID
	return &m, nil
}

func decodeMatches(docs []docstore.Document) []*Match {
	matches := make([]*Match, 0, len(docs))
	for _, doc := range docs {
		m, err := decodeMatch(doc)
		if err != nil {
			log.Error("Failed to decode match document", "error", err, "id", doc.ID)
			continue
		}
		matches = append(matches, m)
	}
	return matches
}

func removePlayer(roster []PlayerRef, playerID string) []PlayerRef {
	kept := make([]PlayerRef, 0, len(roster))
	for _, p := range roster {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	return kept
}

func clampPositions(roster []PlayerRef) []PlayerRef {
	if roster == nil {
		return []PlayerRef{}
	}
	clamped := make([]PlayerRef, len(roster))
	for i, p := range roster {
		clamped[i] = clampPosition(p)
	}
	return clamped
}

// clampPosition keeps tactical-board coordinates inside the pitch.
func clampPosition(p PlayerRef) PlayerRef {
	if p.X != nil {
		x := clamp(*p.X)
		p.X = &x
	}
	if p.Y != nil {
		y := clamp(*p.Y)
		p.Y = &y
	}
	return p
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
