package standupbot

import (
	"errors"
	"fmt"
)

var (
	// ErrTeamNotFound indicates the requested team does not exist.
	ErrTeamNotFound = errors.New("team not found")

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoChannelConfigured indicates the team has no Slack channel ID
	// set, so there is nowhere to deliver a standup.
	ErrNoChannelConfigured = errors.New("team has no channel configured")

	// ErrInvalidTime indicates a schedule time that is not a valid
	// 24-hour HH:MM value.
	ErrInvalidTime = errors.New("invalid schedule time")

	// ErrAllDaysExcluded indicates a team whose excluded-day set covers
	// the whole week, leaving no day on which a standup could fire.
	ErrAllDaysExcluded = errors.New("all days excluded")
)

// SlackAPIError is a non-success response, transport error or timeout
// from the Slack API. Code is the Slack error string (for example
// "channel_not_found") or "transport" for network-level failures.
type SlackAPIError struct {
	Code    string
	Message string
}

func (e *SlackAPIError) Error() string {
	return fmt.Sprintf("slack API error [%s]: %s", e.Code, e.Message)
}
