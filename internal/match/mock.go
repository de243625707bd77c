package match

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the MatchStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc           func(m *Match) (*Match, error)
	GetFunc              func(matchID string) (*Match, error)
	ForGroupFunc         func(groupID string) ([]*Match, error)
	FinishFunc           func(matchID string, req FinishRequest) error
	AssignSeasonFunc     func(matchID, seasonID string) error
	ToggleRosterSpotFunc func(matchID string, side TeamSide, player PlayerRef) error
	RatePlayerFunc       func(matchID, playerID, voterID string, score int) error
	UpdateFunc           func(matchID string, fields map[string]any) error

	// Call records
	UpdateCalls []struct {
		MatchID string
		Fields  map[string]any
	}
	FinishCalls []struct {
		MatchID string
		Req     FinishRequest
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Create(_ context.Context, mt *Match) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(mt)
	}
	return mt, nil
}

func (m *MockStore) Get(_ context.Context, matchID string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(matchID)
	}
	return &Match{ID: matchID}, nil
}

func (m *MockStore) ForGroup(_ context.Context, groupID string) ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForGroupFunc != nil {
		return m.ForGroupFunc(groupID)
	}
	return nil, nil
}

func (m *MockStore) Finish(_ context.Context, matchID string, req FinishRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinishCalls = append(m.FinishCalls, struct {
		MatchID string
		Req     FinishRequest
	}{matchID, req})
	if m.FinishFunc != nil {
		return m.FinishFunc(matchID, req)
	}
	return nil
}

func (m *MockStore) AssignSeason(_ context.Context, matchID, seasonID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AssignSeasonFunc != nil {
		return m.AssignSeasonFunc(matchID, seasonID)
	}
	return nil
}

func (m *MockStore) ToggleRosterSpot(_ context.Context, matchID string, side TeamSide, player PlayerRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ToggleRosterSpotFunc != nil {
		return m.ToggleRosterSpotFunc(matchID, side, player)
	}
	return nil
}

func (m *MockStore) RatePlayer(_ context.Context, matchID, playerID, voterID string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RatePlayerFunc != nil {
		return m.RatePlayerFunc(matchID, playerID, voterID, score)
	}
	return nil
}

func (m *MockStore) Update(_ context.Context, matchID string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, struct {
		MatchID string
		Fields  map[string]any
	}{matchID, fields})
	if m.UpdateFunc != nil {
		return m.UpdateFunc(matchID, fields)
	}
	return nil
}

func (m *MockStore) Subscribe(string, func(matches []*Match)) func() {
	return func() {}
}
