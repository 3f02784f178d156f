package standup

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/coveord/standupbot"
)

// unassignedLeader is shown when the leader has no Slack account mapped.
const unassignedLeader = "unassigned"

// Service sends standup messages. It implements the whole send
// protocol: duplicate check, leader selection, delivery, record
// keeping. A Service holds no state across calls and is safe for
// concurrent use.
type Service struct {
	teams     standupbot.TeamService
	standups  standupbot.StandupStore
	messenger standupbot.Messenger
	logger    *log.Logger

	// intn and now are swapped out by tests for determinism.
	intn func(n int) int
	now  func() time.Time
}

func NewService(teams standupbot.TeamService, standups standupbot.StandupStore, messenger standupbot.Messenger, logger *log.Logger) *Service {
	return &Service{
		teams:     teams,
		standups:  standups,
		messenger: messenger,
		logger:    logger,
		intn:      rand.Intn,
		now:       time.Now,
	}
}

// Summary are the aggregate results of a batch send.
type Summary struct {
	Sent   int
	Failed int
}

// Send sends today's standup message to the team and records it. If a
// standup was already sent to the team today, the existing record is
// returned and nothing is delivered again; a team is never messaged
// twice on the same calendar date.
//
// The duplicate check and the record write are not one transaction: two
// concurrent sends for the same team (a manual send overlapping a
// trigger fire) can both pass the check and both deliver.
func (s *Service) Send(ctx context.Context, team *standupbot.Team) (*standupbot.Standup, error) {
	now := s.now()
	today := dateOnly(now)

	existing, err := s.standups.StandupByTeamAndDate(ctx, team.ID, today)
	if err != nil {
		return nil, fmt.Errorf("check existing standup: %w", err)
	}
	if existing != nil {
		s.logger.WithFields(log.Fields{
			"team":      team.Name,
			"thread_ts": existing.ThreadTS,
		}).Info("Standup already sent today.")
		return existing, nil
	}

	// Re-read the team: the caller may hold a stale snapshot captured
	// when the trigger was registered.
	fresh, err := s.teams.Team(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	leader := pickLeader(fresh.Members, s.intn)
	mention := unassignedLeader
	var leaderUserID int64
	if leader != nil {
		leaderUserID = leader.ID
		if leader.SlackUserID != "" {
			mention = "<@" + leader.SlackUserID + ">"
		}
	}

	text := FormatMessage(fresh.Name, mention, now)

	if fresh.ChannelID == "" {
		return nil, standupbot.ErrNoChannelConfigured
	}

	threadTS, err := s.messenger.PostMessage(ctx, fresh.ChannelID, text)
	if err != nil {
		// No record on a failed delivery; the next trigger retries.
		return nil, fmt.Errorf("post standup message: %w", err)
	}

	standup := &standupbot.Standup{
		TeamID:       fresh.ID,
		ChannelID:    fresh.ChannelID,
		ThreadTS:     threadTS,
		Date:         today,
		Status:       standupbot.StatusPending,
		LeaderUserID: leaderUserID,
		SentAt:       now,
	}
	if err := s.standups.CreateStandup(ctx, standup); err != nil {
		return nil, fmt.Errorf("save standup record: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"team":      fresh.Name,
		"channel":   fresh.ChannelID,
		"thread_ts": threadTS,
	}).Info("Sent standup message.")

	return standup, nil
}

// SendAll sends today's standup to every eligible team. Teams fail
// independently: a failure is logged and counted, and the batch moves
// on. The error return covers only the team listing itself.
func (s *Service) SendAll(ctx context.Context) (Summary, error) {
	teams, err := s.teams.TeamsWithChannel(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list teams: %w", err)
	}

	var summary Summary
	for _, team := range teams {
		if _, err := s.Send(ctx, team); err != nil {
			s.logger.WithFields(log.Fields{
				"team":  team.Name,
				"error": err,
			}).Error("Failed to send standup.")
			summary.Failed++
			continue
		}
		summary.Sent++
	}
	return summary, nil
}

// EligibleTeams returns the teams that can receive a standup, that is
// teams with a channel configured.
func (s *Service) EligibleTeams(ctx context.Context) ([]*standupbot.Team, error) {
	return s.teams.TeamsWithChannel(ctx)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
