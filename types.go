package standupbot

import (
	"context"
	"time"
)

// Version is the version of the standup bot
const Version = "1.0.0"

// Standup status values, in the order a standup moves through them.
const (
	StatusPending           = "pending"
	StatusWaitingForReplies = "waiting_for_replies"
	StatusCompleted         = "completed"
)

// DefaultExcludedDays is applied when a team has no excluded-day
// configuration (0=Sunday, 5=Friday).
const DefaultExcludedDays = "0,5"

type (
	// User is a person that can be part of teams and lead standups.
	User struct {
		ID          int64
		Name        string
		Email       string
		SlackUserID string
		IsAdmin     bool
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Team is a group of users receiving a daily standup message in its
	// Slack channel. A team without a ChannelID is not eligible for
	// standups; a team without a ScheduleTime is never auto-scheduled but
	// can still be sent to manually.
	Team struct {
		ID          int64
		Name        string
		Description string
		ChannelID   string
		// ScheduleTime is the time of day to send the standup, in
		// 24-hour HH:MM format. Empty means no automatic schedule.
		ScheduleTime string
		// ExcludedDays is a comma-separated list of weekday numbers
		// (0=Sunday .. 6=Saturday) on which no standup is sent.
		ExcludedDays string
		OwnerUserID  int64
		Members      []User
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Standup is the record of one standup message sent (or being sent)
	// to a team on a given date. ThreadTS is the Slack thread timestamp
	// returned on delivery; a non-empty ThreadTS is what marks the
	// standup as sent for duplicate detection.
	Standup struct {
		ID        int64
		TeamID    int64
		ChannelID string
		ThreadTS  string
		// Date is the calendar date of the standup, date-only.
		Date         time.Time
		Status       string
		LeaderUserID int64
		SentAt       time.Time
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

// TeamService manages teams and their memberships.
type TeamService interface {
	// Team returns the team with its member list.
	// Returns ErrTeamNotFound if the team does not exist.
	Team(ctx context.Context, id int64) (*Team, error)

	// Teams returns all teams with their member lists, ordered by name.
	Teams(ctx context.Context) ([]*Team, error)

	// TeamsWithChannel returns the teams eligible for standups, that is
	// teams with a non-empty channel ID, with their member lists.
	TeamsWithChannel(ctx context.Context) ([]*Team, error)

	CreateTeam(ctx context.Context, team *Team) error
	UpdateTeam(ctx context.Context, team *Team) error
	DeleteTeam(ctx context.Context, id int64) error

	// AddMember adds the user to the team. Adding a user twice is a
	// no-op. Returns ErrTeamNotFound or ErrUserNotFound accordingly.
	AddMember(ctx context.Context, teamID, userID int64) error
	RemoveMember(ctx context.Context, teamID, userID int64) error
}

// UserService manages users.
type UserService interface {
	// User returns the user. Returns ErrUserNotFound if it does not exist.
	User(ctx context.Context, id int64) (*User, error)

	// UserByName returns the user with the given name, or ErrUserNotFound.
	UserByName(ctx context.Context, name string) (*User, error)

	CreateUser(ctx context.Context, user *User) error
}

// StandupStore persists standup records.
type StandupStore interface {
	// StandupByTeamAndDate returns the standup sent to the team on the
	// given calendar date, matching on the date only and requiring a
	// non-empty delivery thread timestamp. Returns (nil, nil) when no
	// such standup exists.
	StandupByTeamAndDate(ctx context.Context, teamID int64, date time.Time) (*Standup, error)

	// CreateStandup persists the record and fills in its ID.
	CreateStandup(ctx context.Context, standup *Standup) error
}

// Messenger delivers messages to a chat channel. PostMessage returns the
// delivery receipt (the Slack thread timestamp) on success.
type Messenger interface {
	PostMessage(ctx context.Context, channelID, text string) (string, error)
}

// Store is the full persistence surface backing the bot, implemented by
// each database driver under store/.
type Store interface {
	TeamService
	UserService
	StandupStore

	// Migrate creates or updates the database schema.
	Migrate(ctx context.Context) error
	Close() error
}
