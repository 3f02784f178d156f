package sqlite

// schema is the full database schema. Statements are idempotent so
// Migrate can run on every start.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    slack_user_id TEXT,
    is_admin INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS teams (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT,
    channel_id TEXT,
    owner_user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
    schedule_time TEXT,
    excluded_days TEXT DEFAULT '0,5',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS team_user (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_team_user_unique ON team_user(team_id, user_id);

CREATE TABLE IF NOT EXISTS standups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    channel_id TEXT NOT NULL,
    slack_thread_ts TEXT,
    standup_date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    leader_user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
    sent_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_standups_team_date ON standups(team_id, standup_date);
`
