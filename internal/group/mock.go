package group

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the GroupStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc             func(name, createdBy string) (*Group, error)
	GetFunc                func(groupID string) (*Group, error)
	GroupsForMemberFunc    func(userID string) ([]*Group, error)
	JoinByCodeFunc         func(code, userID string) (*Group, error)
	AddMemberFunc          func(groupID, userID string) error
	RemoveMemberFunc       func(groupID, userID string) error
	AddAdminFunc           func(groupID, userID string) error
	RemoveAdminFunc        func(groupID, userID string) error
	AddGuestFunc           func(groupID, rawName string) (GuestPlayer, error)
	RemoveGuestFunc        func(groupID, guestID string) error
	SetGuestListFunc       func(groupID string, guests []GuestPlayer) error
	StartSeasonFunc        func(groupID, seasonName string) (Season, error)
	EndSeasonFunc          func(groupID string) error
	AssignJerseyNumberFunc func(groupID, playerID string, number int) error

	// Call records
	AddMemberCalls []struct {
		GroupID string
		UserID  string
	}
	SetGuestListCalls []struct {
		GroupID string
		Guests  []GuestPlayer
	}
	AddGuestCalls []struct {
		GroupID string
		RawName string
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Create(_ context.Context, name, createdBy string) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(name, createdBy)
	}
	return &Group{Name: name, CreatedBy: createdBy}, nil
}

func (m *MockStore) Get(_ context.Context, groupID string) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(groupID)
	}
	return &Group{ID: groupID}, nil
}

func (m *MockStore) GroupsForMember(_ context.Context, userID string) ([]*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GroupsForMemberFunc != nil {
		return m.GroupsForMemberFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) JoinByCode(_ context.Context, code, userID string) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.JoinByCodeFunc != nil {
		return m.JoinByCodeFunc(code, userID)
	}
	return nil, nil
}

func (m *MockStore) AddMember(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddMemberCalls = append(m.AddMemberCalls, struct {
		GroupID string
		UserID  string
	}{groupID, userID})
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(groupID, userID)
	}
	return nil
}

func (m *MockStore) RemoveMember(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveMemberFunc != nil {
		return m.RemoveMemberFunc(groupID, userID)
	}
	return nil
}

func (m *MockStore) AddAdmin(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddAdminFunc != nil {
		return m.AddAdminFunc(groupID, userID)
	}
	return nil
}

func (m *MockStore) RemoveAdmin(_ context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveAdminFunc != nil {
		return m.RemoveAdminFunc(groupID, userID)
	}
	return nil
}

func (m *MockStore) AddGuest(_ context.Context, groupID, rawName string) (GuestPlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddGuestCalls = append(m.AddGuestCalls, struct {
		GroupID string
		RawName string
	}{groupID, rawName})
	if m.AddGuestFunc != nil {
		return m.AddGuestFunc(groupID, rawName)
	}
	return GuestPlayer{}, nil
}

func (m *MockStore) RemoveGuest(_ context.Context, groupID, guestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveGuestFunc != nil {
		return m.RemoveGuestFunc(groupID, guestID)
	}
	return nil
}

func (m *MockStore) SetGuestList(_ context.Context, groupID string, guests []GuestPlayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetGuestListCalls = append(m.SetGuestListCalls, struct {
		GroupID string
		Guests  []GuestPlayer
	}{groupID, guests})
	if m.SetGuestListFunc != nil {
		return m.SetGuestListFunc(groupID, guests)
	}
	return nil
}

func (m *MockStore) StartSeason(_ context.Context, groupID, seasonName string) (Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartSeasonFunc != nil {
		return m.StartSeasonFunc(groupID, seasonName)
	}
	return Season{}, nil
}

func (m *MockStore) EndSeason(_ context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EndSeasonFunc != nil {
		return m.EndSeasonFunc(groupID)
	}
	return nil
}

func (m *MockStore) AssignJerseyNumber(_ context.Context, groupID, playerID string, number int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AssignJerseyNumberFunc != nil {
		return m.AssignJerseyNumberFunc(groupID, playerID, number)
	}
	return nil
}

func (m *MockStore) Subscribe(string, func(groups []*Group)) func() {
	return func() {}
}
