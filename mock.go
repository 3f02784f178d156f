package standupbot

import (
	"context"
	"sync"
	"time"
)

// MockTeamService is a configurable mock implementation of TeamService
// for use in tests. Set the Func fields to control return values; calls
// are tracked for assertions.
type MockTeamService struct {
	mu sync.Mutex

	TeamFunc             func(ctx context.Context, id int64) (*Team, error)
	TeamsFunc            func(ctx context.Context) ([]*Team, error)
	TeamsWithChannelFunc func(ctx context.Context) ([]*Team, error)
	CreateTeamFunc       func(ctx context.Context, team *Team) error
	UpdateTeamFunc       func(ctx context.Context, team *Team) error
	DeleteTeamFunc       func(ctx context.Context, id int64) error
	AddMemberFunc        func(ctx context.Context, teamID, userID int64) error
	RemoveMemberFunc     func(ctx context.Context, teamID, userID int64) error

	TeamCalls []int64
}

var _ TeamService = &MockTeamService{}

func (m *MockTeamService) Team(ctx context.Context, id int64) (*Team, error) {
	m.mu.Lock()
	m.TeamCalls = append(m.TeamCalls, id)
	m.mu.Unlock()
	if m.TeamFunc == nil {
		return nil, ErrTeamNotFound
	}
	return m.TeamFunc(ctx, id)
}

func (m *MockTeamService) Teams(ctx context.Context) ([]*Team, error) {
	if m.TeamsFunc == nil {
		return nil, nil
	}
	return m.TeamsFunc(ctx)
}

func (m *MockTeamService) TeamsWithChannel(ctx context.Context) ([]*Team, error) {
	if m.TeamsWithChannelFunc == nil {
		return nil, nil
	}
	return m.TeamsWithChannelFunc(ctx)
}

func (m *MockTeamService) CreateTeam(ctx context.Context, team *Team) error {
	if m.CreateTeamFunc == nil {
		return nil
	}
	return m.CreateTeamFunc(ctx, team)
}

func (m *MockTeamService) UpdateTeam(ctx context.Context, team *Team) error {
	if m.UpdateTeamFunc == nil {
		return nil
	}
	return m.UpdateTeamFunc(ctx, team)
}

func (m *MockTeamService) DeleteTeam(ctx context.Context, id int64) error {
	if m.DeleteTeamFunc == nil {
		return nil
	}
	return m.DeleteTeamFunc(ctx, id)
}

func (m *MockTeamService) AddMember(ctx context.Context, teamID, userID int64) error {
	if m.AddMemberFunc == nil {
		return nil
	}
	return m.AddMemberFunc(ctx, teamID, userID)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, teamID, userID int64) error {
	if m.RemoveMemberFunc == nil {
		return nil
	}
	return m.RemoveMemberFunc(ctx, teamID, userID)
}

// MockStandupStore is a configurable mock implementation of StandupStore
// for use in tests.
type MockStandupStore struct {
	mu sync.Mutex

	StandupByTeamAndDateFunc func(ctx context.Context, teamID int64, date time.Time) (*Standup, error)
	CreateStandupFunc        func(ctx context.Context, standup *Standup) error

	StandupByTeamAndDateCalls []StandupByTeamAndDateCall
	CreateStandupCalls        []*Standup
}

// StandupByTeamAndDateCall records one duplicate-check lookup.
type StandupByTeamAndDateCall struct {
	TeamID int64
	Date   time.Time
}

var _ StandupStore = &MockStandupStore{}

func (m *MockStandupStore) StandupByTeamAndDate(ctx context.Context, teamID int64, date time.Time) (*Standup, error) {
	m.mu.Lock()
	m.StandupByTeamAndDateCalls = append(m.StandupByTeamAndDateCalls, StandupByTeamAndDateCall{TeamID: teamID, Date: date})
	m.mu.Unlock()
	if m.StandupByTeamAndDateFunc == nil {
		return nil, nil
	}
	return m.StandupByTeamAndDateFunc(ctx, teamID, date)
}

func (m *MockStandupStore) CreateStandup(ctx context.Context, standup *Standup) error {
	m.mu.Lock()
	m.CreateStandupCalls = append(m.CreateStandupCalls, standup)
	m.mu.Unlock()
	if m.CreateStandupFunc == nil {
		standup.ID = int64(len(m.CreateStandupCalls))
		return nil
	}
	return m.CreateStandupFunc(ctx, standup)
}

// MockMessenger is a configurable mock implementation of Messenger for
// use in tests.
type MockMessenger struct {
	mu sync.Mutex

	PostMessageFunc func(ctx context.Context, channelID, text string) (string, error)

	PostMessageCalls []PostMessageCall
}

// PostMessageCall records one delivery attempt.
type PostMessageCall struct {
	ChannelID string
	Text      string
}

var _ Messenger = &MockMessenger{}

func (m *MockMessenger) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	m.mu.Lock()
	m.PostMessageCalls = append(m.PostMessageCalls, PostMessageCall{ChannelID: channelID, Text: text})
	m.mu.Unlock()
	if m.PostMessageFunc == nil {
		return "1234567890.123456", nil
	}
	return m.PostMessageFunc(ctx, channelID, text)
}
