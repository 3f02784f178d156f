package standup

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/coveord/standupbot"
)

// Scheduler owns the recurring standup triggers, one per scheduled
// team. The jobs map is the only shared mutable state: it is guarded so
// schedule and unschedule calls are safe against each other and against
// firing triggers. Removing a job only prevents future fires; a send
// already in flight runs to completion.
type Scheduler struct {
	service *Service
	logger  *log.Logger

	cron *cron.Cron

	mu   sync.Mutex
	jobs map[int64]cron.EntryID
}

// NewScheduler returns a running scheduler with no jobs. Triggers fire
// in the process's local time zone.
func NewScheduler(service *Service, logger *log.Logger) *Scheduler {
	s := &Scheduler{
		service: service,
		logger:  logger,
		cron:    cron.New(),
		jobs:    map[int64]cron.EntryID{},
	}
	s.cron.Start()
	return s
}

// ScheduleTeam registers the team's recurring standup trigger, first
// dropping any trigger already registered for it, so a team never has
// two live triggers. Teams without a schedule time, with an invalid
// time or with every weekday excluded are skipped with a log line,
// never an error.
func (s *Scheduler) ScheduleTeam(team *standupbot.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(team.ID)

	if team.ScheduleTime == "" {
		s.logger.WithFields(log.Fields{
			"team": team.Name,
		}).Info("Team has no schedule time configured, skipping.")
		return
	}

	excludedDays := team.ExcludedDays
	if excludedDays == "" {
		excludedDays = standupbot.DefaultExcludedDays
	}

	schedule, err := ParseSchedule(team.ScheduleTime, excludedDays)
	if err != nil {
		s.logger.WithFields(log.Fields{
			"team":  team.Name,
			"time":  team.ScheduleTime,
			"error": err,
		}).Warn("Not scheduling team.")
		return
	}

	// The trigger captures a snapshot; Send re-reads the team when it
	// fires, so only the identity matters here.
	snapshot := *team
	spec := schedule.CronSpec()
	entryID, err := s.cron.AddFunc(spec, func() {
		s.logger.WithFields(log.Fields{"team": snapshot.Name}).Info("Running scheduled standup.")
		if _, err := s.service.Send(context.Background(), &snapshot); err != nil {
			s.logger.WithFields(log.Fields{
				"team":  snapshot.Name,
				"error": err,
			}).Error("Scheduled standup failed.")
		}
	})
	if err != nil {
		s.logger.WithFields(log.Fields{
			"team":  team.Name,
			"cron":  spec,
			"error": err,
		}).Error("Could not register standup trigger.")
		return
	}

	s.jobs[team.ID] = entryID
	s.logger.WithFields(log.Fields{
		"team": team.Name,
		"cron": spec,
	}).Info("Team scheduled.")
}

// UnscheduleTeam cancels the team's future trigger fires. Unscheduling
// a team that has no trigger is a no-op.
func (s *Scheduler) UnscheduleTeam(teamID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(teamID)
}

func (s *Scheduler) removeLocked(teamID int64) {
	if entryID, ok := s.jobs[teamID]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, teamID)
	}
}

// ScheduleAll establishes triggers for every eligible team.
func (s *Scheduler) ScheduleAll(ctx context.Context) error {
	teams, err := s.service.EligibleTeams(ctx)
	if err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{"teams": len(teams)}).Info("Scheduling teams.")
	for _, team := range teams {
		s.ScheduleTeam(team)
	}
	return nil
}

// ActiveTeams returns the IDs of teams that currently have a trigger.
func (s *Scheduler) ActiveTeams() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamIDs := make([]int64, 0, len(s.jobs))
	for teamID := range s.jobs {
		teamIDs = append(teamIDs, teamID)
	}
	return teamIDs
}

// StopAll cancels every trigger and stops the underlying cron runner.
// Sends already in flight are not interrupted. Intended for process
// shutdown.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for teamID, entryID := range s.jobs {
		s.cron.Remove(entryID)
		s.logger.WithFields(log.Fields{"team_id": teamID}).Info("Stopped standup job.")
	}
	s.jobs = map[int64]cron.EntryID{}
	s.cron.Stop()
}
