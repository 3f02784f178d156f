package standupbot

import (
	"errors"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the configuration of the running bot
type Config struct {
	Slack    SlackConfig    `toml:"slack"`
	Database DatabaseConfig `toml:"database"`
}

// SlackConfig configures the Slack client
type SlackConfig struct {
	Token string `toml:"token"`
	// Cookie is the optional Slack "d" cookie, needed for some
	// workspace tokens.
	Cookie string `toml:"cookie"`
	// TimeoutSeconds bounds every Slack API call.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// DatabaseConfig configures the backing store. Driver is either
// "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	Path     string `toml:"path"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// DefaultConfig returns the built-in defaults: a local sqlite database
// and a 30 second Slack timeout.
func DefaultConfig() Config {
	return Config{
		Slack: SlackConfig{
			TimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./db.sqlite",
			Host:   "localhost",
			Port:   5432,
		},
	}
}

// LoadConfig reads the TOML configuration file when it exists and then
// applies environment variable overrides. A missing file is not an
// error; everything can be configured through the environment.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &config); err != nil && !os.IsNotExist(err) {
			return config, err
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SLACK_TOKEN"); v != "" {
		c.Slack.Token = v
	}
	if v := os.Getenv("SLACK_COOKIE"); v != "" {
		c.Slack.Cookie = v
	}
	if v := os.Getenv("SLACK_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Slack.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("DB_TYPE"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Database.Port = n
		}
	}
	if v := os.Getenv("DB_USERNAME"); v != "" {
		c.Database.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_DATABASE"); v != "" {
		c.Database.Database = v
	}
}

// ValidateSlack checks the parts of the configuration needed to talk to
// Slack. Only commands that actually send messages require this.
func (c *Config) ValidateSlack() error {
	if c.Slack.Token == "" {
		return errors.New("SLACK_TOKEN is required")
	}
	return nil
}

// ValidateDatabase checks the parts of the configuration needed to open
// the store.
func (c *Config) ValidateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("DATABASE_PATH is required for sqlite")
		}
	case "postgres":
		if c.Database.Username == "" || c.Database.Database == "" {
			return errors.New("postgres requires DB_USERNAME and DB_DATABASE")
		}
	default:
		return errors.New("unknown database driver: " + c.Database.Driver)
	}
	return nil
}
