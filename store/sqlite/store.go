package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/coveord/standupbot"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// Store is a SQLite implementation of standupbot.Store, backed by a
// single database file (or ":memory:" in tests).
type Store struct {
	db *sql.DB
}

var _ standupbot.Store = &Store{}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. Safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, user *standupbot.User) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users(name, email, slack_user_id, is_admin, created_at, updated_at)
		 VALUES(?,?,?,?,?,?)`,
		user.Name, user.Email, nullStr(user.SlackUserID), boolInt(user.IsAdmin),
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *Store) User(ctx context.Context, id int64) (*standupbot.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, slack_user_id, is_admin, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) UserByName(ctx context.Context, name string) (*standupbot.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, slack_user_id, is_admin, created_at, updated_at
		 FROM users WHERE name = ?`, name)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*standupbot.User, error) {
	var user standupbot.User
	var slackUserID sql.NullString
	var isAdmin int64
	var createdAt, updatedAt string

	err := row.Scan(&user.ID, &user.Name, &user.Email, &slackUserID, &isAdmin, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, standupbot.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.SlackUserID = slackUserID.String
	user.IsAdmin = isAdmin != 0
	user.CreatedAt = parseTime(createdAt)
	user.UpdatedAt = parseTime(updatedAt)
	return &user, nil
}

// ---- teams ----

func (s *Store) CreateTeam(ctx context.Context, team *standupbot.Team) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO teams(name, description, channel_id, owner_user_id, schedule_time, excluded_days, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?,?)`,
		team.Name, nullStr(team.Description), nullStr(team.ChannelID), nullInt(team.OwnerUserID),
		nullStr(team.ScheduleTime), nullStr(team.ExcludedDays),
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	team.ID = id
	team.CreatedAt = now
	team.UpdatedAt = now
	return nil
}

func (s *Store) Team(ctx context.Context, id int64) (*standupbot.Team, error) {
	row := s.db.QueryRowContext(ctx, teamSelect+` WHERE id = ?`, id)
	team, err := scanTeam(row.Scan)
	if err != nil {
		return nil, err
	}
	if err := s.loadMembers(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *Store) Teams(ctx context.Context) ([]*standupbot.Team, error) {
	return s.queryTeams(ctx, teamSelect+` ORDER BY name`)
}

func (s *Store) TeamsWithChannel(ctx context.Context) ([]*standupbot.Team, error) {
	return s.queryTeams(ctx, teamSelect+` WHERE channel_id IS NOT NULL AND channel_id <> '' ORDER BY name`)
}

const teamSelect = `SELECT id, name, description, channel_id, owner_user_id, schedule_time, excluded_days, created_at, updated_at FROM teams`

func (s *Store) queryTeams(ctx context.Context, query string, args ...any) ([]*standupbot.Team, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []*standupbot.Team
	for rows.Next() {
		team, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	for _, team := range teams {
		if err := s.loadMembers(ctx, team); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func scanTeam(scan func(...any) error) (*standupbot.Team, error) {
	var team standupbot.Team
	var description, channelID, scheduleTime, excludedDays sql.NullString
	var ownerUserID sql.NullInt64
	var createdAt, updatedAt string

	err := scan(&team.ID, &team.Name, &description, &channelID, &ownerUserID,
		&scheduleTime, &excludedDays, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, standupbot.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	team.Description = description.String
	team.ChannelID = channelID.String
	team.OwnerUserID = ownerUserID.Int64
	team.ScheduleTime = scheduleTime.String
	team.ExcludedDays = excludedDays.String
	team.CreatedAt = parseTime(createdAt)
	team.UpdatedAt = parseTime(updatedAt)
	return &team, nil
}

func (s *Store) loadMembers(ctx context.Context, team *standupbot.Team) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.slack_user_id, u.is_admin, u.created_at, u.updated_at
		 FROM users u
		 JOIN team_user tu ON tu.user_id = u.id
		 WHERE tu.team_id = ?
		 ORDER BY tu.id`, team.ID)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	defer rows.Close()

	team.Members = nil
	for rows.Next() {
		var user standupbot.User
		var slackUserID sql.NullString
		var isAdmin int64
		var createdAt, updatedAt string
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &slackUserID, &isAdmin, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("load members: %w", err)
		}
		user.SlackUserID = slackUserID.String
		user.IsAdmin = isAdmin != 0
		user.CreatedAt = parseTime(createdAt)
		user.UpdatedAt = parseTime(updatedAt)
		team.Members = append(team.Members, user)
	}
	return rows.Err()
}

func (s *Store) UpdateTeam(ctx context.Context, team *standupbot.Team) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE teams SET name = ?, description = ?, channel_id = ?, owner_user_id = ?,
		        schedule_time = ?, excluded_days = ?, updated_at = ?
		 WHERE id = ?`,
		team.Name, nullStr(team.Description), nullStr(team.ChannelID), nullInt(team.OwnerUserID),
		nullStr(team.ScheduleTime), nullStr(team.ExcludedDays), now.Format(timeLayout), team.ID,
	)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if affected == 0 {
		return standupbot.ErrTeamNotFound
	}
	team.UpdatedAt = now
	return nil
}

func (s *Store) DeleteTeam(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if affected == 0 {
		return standupbot.ErrTeamNotFound
	}
	return nil
}

func (s *Store) AddMember(ctx context.Context, teamID, userID int64) error {
	if _, err := s.Team(ctx, teamID); err != nil {
		return err
	}
	if _, err := s.User(ctx, userID); err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO team_user(team_id, user_id, created_at) VALUES(?,?,?)`,
		teamID, userID, now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, teamID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM team_user WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// ---- standups ----

func (s *Store) StandupByTeamAndDate(ctx context.Context, teamID int64, date time.Time) (*standupbot.Standup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, channel_id, slack_thread_ts, standup_date, status, leader_user_id, sent_at, created_at, updated_at
		 FROM standups
		 WHERE team_id = ? AND standup_date = ?
		   AND slack_thread_ts IS NOT NULL AND slack_thread_ts <> ''
		 ORDER BY id LIMIT 1`,
		teamID, date.Format(dateLayout),
	)

	var standup standupbot.Standup
	var threadTS, sentAt sql.NullString
	var leaderUserID sql.NullInt64
	var standupDate, createdAt, updatedAt string

	err := row.Scan(&standup.ID, &standup.TeamID, &standup.ChannelID, &threadTS,
		&standupDate, &standup.Status, &leaderUserID, &sentAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get standup: %w", err)
	}
	standup.ThreadTS = threadTS.String
	standup.LeaderUserID = leaderUserID.Int64
	standup.Date = parseDate(standupDate)
	if sentAt.Valid {
		standup.SentAt = parseTime(sentAt.String)
	}
	standup.CreatedAt = parseTime(createdAt)
	standup.UpdatedAt = parseTime(updatedAt)
	return &standup, nil
}

func (s *Store) CreateStandup(ctx context.Context, standup *standupbot.Standup) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO standups(team_id, channel_id, slack_thread_ts, standup_date, status, leader_user_id, sent_at, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?,?,?)`,
		standup.TeamID, standup.ChannelID, nullStr(standup.ThreadTS),
		standup.Date.Format(dateLayout), standup.Status, nullInt(standup.LeaderUserID),
		nullTime(standup.SentAt), now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create standup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create standup: %w", err)
	}
	standup.ID = id
	standup.CreatedAt = now
	standup.UpdatedAt = now
	return nil
}

// ---- helpers ----

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func parseDate(s string) time.Time {
	t, _ := time.ParseInLocation(dateLayout, s, time.Local)
	return t
}
