package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/coveord/standupbot"
)

const dateLayout = "2006-01-02"

// Store is a PostgreSQL implementation of standupbot.Store.
type Store struct {
	db *sql.DB
}

var _ standupbot.Store = &Store{}

// Open connects to the database described by the configuration.
func Open(config standupbot.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Host, config.Port, config.Username, config.Password, config.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
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
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users(name, email, slack_user_id, is_admin)
		 VALUES($1,$2,$3,$4)
		 RETURNING id, created_at, updated_at`,
		user.Name, user.Email, nullStr(user.SlackUserID), user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) User(ctx context.Context, id int64) (*standupbot.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, slack_user_id, is_admin, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row.Scan)
}

func (s *Store) UserByName(ctx context.Context, name string) (*standupbot.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, slack_user_id, is_admin, created_at, updated_at
		 FROM users WHERE name = $1`, name)
	return scanUser(row.Scan)
}

func scanUser(scan func(...any) error) (*standupbot.User, error) {
	var user standupbot.User
	var slackUserID sql.NullString

	err := scan(&user.ID, &user.Name, &user.Email, &slackUserID, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, standupbot.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.SlackUserID = slackUserID.String
	return &user, nil
}

// ---- teams ----

const teamSelect = `SELECT id, name, description, channel_id, owner_user_id, schedule_time, excluded_days, created_at, updated_at FROM teams`

func (s *Store) CreateTeam(ctx context.Context, team *standupbot.Team) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO teams(name, description, channel_id, owner_user_id, schedule_time, excluded_days)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING id, created_at, updated_at`,
		team.Name, nullStr(team.Description), nullStr(team.ChannelID), nullInt(team.OwnerUserID),
		nullStr(team.ScheduleTime), nullStr(team.ExcludedDays),
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

func (s *Store) Team(ctx context.Context, id int64) (*standupbot.Team, error) {
	row := s.db.QueryRowContext(ctx, teamSelect+` WHERE id = $1`, id)
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

	err := scan(&team.ID, &team.Name, &description, &channelID, &ownerUserID,
		&scheduleTime, &excludedDays, &team.CreatedAt, &team.UpdatedAt)
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
	return &team, nil
}

func (s *Store) loadMembers(ctx context.Context, team *standupbot.Team) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.slack_user_id, u.is_admin, u.created_at, u.updated_at
		 FROM users u
		 JOIN team_user tu ON tu.user_id = u.id
		 WHERE tu.team_id = $1
		 ORDER BY tu.id`, team.ID)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	defer rows.Close()

	team.Members = nil
	for rows.Next() {
		var user standupbot.User
		var slackUserID sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &slackUserID, &user.IsAdmin,
			&user.CreatedAt, &user.UpdatedAt); err != nil {
			return fmt.Errorf("load members: %w", err)
		}
		user.SlackUserID = slackUserID.String
		team.Members = append(team.Members, user)
	}
	return rows.Err()
}

func (s *Store) UpdateTeam(ctx context.Context, team *standupbot.Team) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE teams SET name = $2, description = $3, channel_id = $4, owner_user_id = $5,
		        schedule_time = $6, excluded_days = $7, updated_at = NOW()
		 WHERE id = $1`,
		team.ID, team.Name, nullStr(team.Description), nullStr(team.ChannelID),
		nullInt(team.OwnerUserID), nullStr(team.ScheduleTime), nullStr(team.ExcludedDays),
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
	return nil
}

func (s *Store) DeleteTeam(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO team_user(team_id, user_id) VALUES($1,$2)
		 ON CONFLICT (team_id, user_id) DO NOTHING`,
		teamID, userID,
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, teamID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM team_user WHERE team_id = $1 AND user_id = $2`, teamID, userID)
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
		 WHERE team_id = $1 AND standup_date = $2
		   AND slack_thread_ts IS NOT NULL AND slack_thread_ts <> ''
		 ORDER BY id LIMIT 1`,
		teamID, date.Format(dateLayout),
	)

	var standup standupbot.Standup
	var threadTS sql.NullString
	var leaderUserID sql.NullInt64
	var sentAt sql.NullTime

	err := row.Scan(&standup.ID, &standup.TeamID, &standup.ChannelID, &threadTS,
		&standup.Date, &standup.Status, &leaderUserID, &sentAt,
		&standup.CreatedAt, &standup.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get standup: %w", err)
	}
	standup.ThreadTS = threadTS.String
	standup.LeaderUserID = leaderUserID.Int64
	standup.SentAt = sentAt.Time
	return &standup, nil
}

func (s *Store) CreateStandup(ctx context.Context, standup *standupbot.Standup) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO standups(team_id, channel_id, slack_thread_ts, standup_date, status, leader_user_id, sent_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING id, created_at, updated_at`,
		standup.TeamID, standup.ChannelID, nullStr(standup.ThreadTS),
		standup.Date.Format(dateLayout), standup.Status, nullInt(standup.LeaderUserID),
		nullTime(standup.SentAt),
	).Scan(&standup.ID, &standup.CreatedAt, &standup.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create standup: %w", err)
	}
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
	return t
}
