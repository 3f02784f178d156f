package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/coveord/standupbot"
	"github.com/coveord/standupbot/slack"
	"github.com/coveord/standupbot/standup"
	"github.com/coveord/standupbot/store/postgres"
	"github.com/coveord/standupbot/store/sqlite"
)

const header = " ____  _                  _             ____        _\n" +
	"/ ___|| |_ __ _ _ __   __| |_   _ _ __ | __ )  ___ | |_\n" +
	"\\___ \\| __/ _` | '_ \\ / _` | | | | '_ \\|  _ \\ / _ \\| __|\n" +
	" ___) | || (_| | | | | (_| | |_| | |_) | |_) | (_) | |_\n" +
	"|____/ \\__\\__,_|_| |_|\\__,_|\\__,_| .__/|____/ \\___/ \\__|\n" +
	"                                 |_|"

// Exit codes for manual sends, so callers can tell failures apart.
const (
	exitFailure        = 1
	exitTeamNotFound   = 2
	exitNoChannel      = 3
	exitDeliveryFailed = 4
)

func main() {
	configFile := "config.toml"
	flag.StringVar(&configFile, "config", configFile, "the configuration file to load/use")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(exitFailure)
	}

	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	logger := log.New()

	config, err := standupbot.LoadConfig(configFile)
	if err != nil {
		logger.Fatalln("Cannot load configuration", configFile, err)
	}

	if err := run(args, config, logger); err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(exitCode(err))
	}
}

func run(args []string, config standupbot.Config, logger *log.Logger) error {
	ctx := context.Background()
	command := args[0]

	switch command {
	case "help", "--help", "-h":
		printUsage()
		return nil
	}

	if err := config.ValidateDatabase(); err != nil {
		return err
	}
	store, err := openStore(config.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	switch command {
	case "db:migrate":
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		fmt.Println("✓ Database is up to date")
		return nil

	case "db:seed":
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		if err := standupbot.Seed(ctx, store); err != nil {
			return err
		}
		fmt.Println("✓ Seeding completed successfully")
		return nil

	case "standup:send":
		return runSend(ctx, args[1:], config, store, logger)

	case "standup:scheduler":
		return runScheduler(ctx, config, store, logger)

	case "team:create":
		return runTeamCreate(ctx, args[1:], store)

	case "team:list":
		return runTeamList(ctx, store)

	case "team:update":
		return runTeamUpdate(ctx, args[1:], store)

	case "team:delete":
		return runTeamDelete(ctx, args[1:], store)

	case "team:add-user":
		return runTeamAddUser(ctx, args[1:], store)

	case "team:remove-user":
		return runTeamRemoveUser(ctx, args[1:], store)

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func openStore(config standupbot.DatabaseConfig) (standupbot.Store, error) {
	switch config.Driver {
	case "postgres":
		return postgres.Open(config)
	default:
		return sqlite.Open(config.Path)
	}
}

func newService(config standupbot.Config, store standupbot.Store, logger *log.Logger) (*standup.Service, error) {
	if err := config.ValidateSlack(); err != nil {
		return nil, err
	}
	return standup.NewService(store, store, slack.New(config.Slack), logger), nil
}

func runSend(ctx context.Context, args []string, config standupbot.Config, store standupbot.Store, logger *log.Logger) error {
	service, err := newService(config, store, logger)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		teamID, err := parseID(args[0])
		if err != nil {
			return err
		}
		team, err := store.Team(ctx, teamID)
		if err != nil {
			return err
		}
		fmt.Printf("Sending standup to team: %s (Channel: %s)\n", team.Name, team.ChannelID)
		sent, err := service.Send(ctx, team)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Sent successfully (Thread: %s)\n", sent.ThreadTS)
		return nil
	}

	teams, err := service.EligibleTeams(ctx)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		fmt.Println("No teams configured to receive standup")
		return nil
	}
	fmt.Printf("Sending standup to %d team(s)...\n\n", len(teams))

	summary, err := service.SendAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nSummary: %d sent, %d failed\n", summary.Sent, summary.Failed)
	return nil
}

func runScheduler(ctx context.Context, config standupbot.Config, store standupbot.Store, logger *log.Logger) error {
	fmt.Println(header)
	fmt.Println("Version", standupbot.Version)
	fmt.Println("")

	service, err := newService(config, store, logger)
	if err != nil {
		return err
	}
	scheduler := standup.NewScheduler(service, logger)

	if err := scheduler.ScheduleAll(ctx); err != nil {
		return err
	}

	fmt.Println("Scheduler is running. Press Ctrl+C to stop.")
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals

	logger.Info("Shutting down scheduler.")
	scheduler.StopAll()
	return nil
}

func runTeamCreate(ctx context.Context, args []string, store standupbot.Store) error {
	if len(args) < 2 {
		return errors.New("usage: team:create <name> <channel_id> [description]")
	}
	team := &standupbot.Team{
		Name:      args[0],
		ChannelID: args[1],
	}
	if len(args) > 2 {
		team.Description = args[2]
	}
	if err := store.CreateTeam(ctx, team); err != nil {
		return err
	}
	fmt.Println("✓ Team created successfully:")
	printTeam(team)
	return nil
}

func runTeamList(ctx context.Context, store standupbot.Store) error {
	teams, err := store.Teams(ctx)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		fmt.Println("No teams found")
		return nil
	}

	fmt.Printf("\nFound %d team(s):\n\n", len(teams))
	for _, team := range teams {
		fmt.Printf("[%d] %s\n", team.ID, team.Name)
		fmt.Printf("  Channel: %s\n", orNotSet(team.ChannelID))
		fmt.Printf("  Description: %s\n", orNotSet(team.Description))
		fmt.Printf("  Schedule Time: %s\n", orNotSet(team.ScheduleTime))
		fmt.Printf("  Excluded Days: %s\n", orDefault(team.ExcludedDays, "Not set (default: 0,5 - Sunday, Friday)"))
		fmt.Printf("  Members: %d\n", len(team.Members))
		if len(team.Members) > 0 {
			names := make([]string, len(team.Members))
			for i, member := range team.Members {
				names[i] = member.Name
			}
			fmt.Printf("    - %s\n", strings.Join(names, ", "))
		}
		fmt.Println("")
	}
	return nil
}

func runTeamUpdate(ctx context.Context, args []string, store standupbot.Store) error {
	if len(args) < 1 {
		return errors.New("usage: team:update <team_id> [--name=<name>] [--channel=<id>] [--description=<desc>] [--schedule=<HH:MM>] [--excluded-days=<0,5>]")
	}
	teamID, err := parseID(args[0])
	if err != nil {
		return err
	}
	team, err := store.Team(ctx, teamID)
	if err != nil {
		return err
	}

	updated := false
	for _, arg := range args[1:] {
		switch {
		case strings.HasPrefix(arg, "--name="):
			team.Name = strings.TrimPrefix(arg, "--name=")
			updated = true
		case strings.HasPrefix(arg, "--channel="):
			team.ChannelID = strings.TrimPrefix(arg, "--channel=")
			updated = true
		case strings.HasPrefix(arg, "--description="):
			team.Description = strings.TrimPrefix(arg, "--description=")
			updated = true
		case strings.HasPrefix(arg, "--schedule="):
			team.ScheduleTime = strings.TrimPrefix(arg, "--schedule=")
			updated = true
		case strings.HasPrefix(arg, "--excluded-days="):
			team.ExcludedDays = strings.TrimPrefix(arg, "--excluded-days=")
			updated = true
		}
	}
	if !updated {
		fmt.Println("No updates provided")
		return nil
	}

	if err := store.UpdateTeam(ctx, team); err != nil {
		return err
	}
	fmt.Println("✓ Team updated successfully:")
	printTeam(team)
	return nil
}

func runTeamDelete(ctx context.Context, args []string, store standupbot.Store) error {
	if len(args) < 1 {
		return errors.New("usage: team:delete <team_id>")
	}
	teamID, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteTeam(ctx, teamID); err != nil {
		return err
	}
	fmt.Printf("✓ Team %d deleted\n", teamID)
	return nil
}

func runTeamAddUser(ctx context.Context, args []string, store standupbot.Store) error {
	if len(args) < 2 {
		return errors.New("usage: team:add-user <team_id> <user_name> [--create]")
	}
	teamID, err := parseID(args[0])
	if err != nil {
		return err
	}
	userName := args[1]
	createIfMissing := false
	for _, arg := range args[2:] {
		if arg == "--create" {
			createIfMissing = true
		}
	}

	user, err := store.UserByName(ctx, userName)
	if errors.Is(err, standupbot.ErrUserNotFound) {
		if !createIfMissing {
			return fmt.Errorf("user %q not found, use --create to create the user", userName)
		}
		email := strings.ToLower(strings.Join(strings.Fields(userName), ".")) + "@example.com"
		user = &standupbot.User{Name: userName, Email: email}
		if err := store.CreateUser(ctx, user); err != nil {
			return err
		}
		fmt.Printf("✓ User created with email: %s\n", email)
	} else if err != nil {
		return err
	}

	if err := store.AddMember(ctx, teamID, user.ID); err != nil {
		return err
	}
	team, err := store.Team(ctx, teamID)
	if err != nil {
		return err
	}
	fmt.Printf("✓ User %q added to team %q\n", userName, team.Name)
	return nil
}

func runTeamRemoveUser(ctx context.Context, args []string, store standupbot.Store) error {
	if len(args) < 2 {
		return errors.New("usage: team:remove-user <team_id> <user_id>")
	}
	teamID, err := parseID(args[0])
	if err != nil {
		return err
	}
	userID, err := parseID(args[1])
	if err != nil {
		return err
	}
	if err := store.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}
	fmt.Printf("✓ User %d removed from team %d\n", userID, teamID)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printTeam(team *standupbot.Team) {
	fmt.Printf("  ID: %d\n", team.ID)
	fmt.Printf("  Name: %s\n", team.Name)
	fmt.Printf("  Channel ID: %s\n", orNotSet(team.ChannelID))
	fmt.Printf("  Description: %s\n", orNotSet(team.Description))
}

func orNotSet(s string) string {
	return orDefault(s, "Not set")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func exitCode(err error) int {
	var slackErr *standupbot.SlackAPIError
	switch {
	case errors.Is(err, standupbot.ErrTeamNotFound):
		return exitTeamNotFound
	case errors.Is(err, standupbot.ErrNoChannelConfigured):
		return exitNoChannel
	case errors.As(err, &slackErr):
		return exitDeliveryFailed
	default:
		return exitFailure
	}
}

func printUsage() {
	fmt.Println("standupbot - Multi-Team Standup CLI")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  standupbot [-config config.toml] <command> [options]")
	fmt.Println("")
	fmt.Println("Database Commands:")
	fmt.Println("  db:migrate                          Run database migrations")
	fmt.Println("  db:seed                             Seed database with sample data")
	fmt.Println("")
	fmt.Println("Standup Commands:")
	fmt.Println("  standup:send [team_id]              Send standup to all teams or a specific team")
	fmt.Println("  standup:scheduler                   Start the cron scheduler for daily standups")
	fmt.Println("")
	fmt.Println("Team Management Commands:")
	fmt.Println("  team:create <name> <channel_id> [desc]  Create a new team")
	fmt.Println("  team:list                               List all teams")
	fmt.Println("  team:update <id> [options]              Update team details")
	fmt.Println("    Options: --name=<name> --channel=<id> --description=<desc>")
	fmt.Println("             --schedule=<HH:MM> --excluded-days=<0,5>")
	fmt.Println("  team:delete <id>                        Delete a team")
	fmt.Println("  team:add-user <team_id> <user_name> [--create]  Add user to team")
	fmt.Println("  team:remove-user <team_id> <user_id>    Remove user from team")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE           Database type: sqlite | postgres (default: sqlite)")
	fmt.Println("  DATABASE_PATH     SQLite database path (default: ./db.sqlite)")
	fmt.Println("  DB_HOST           PostgreSQL host (default: localhost)")
	fmt.Println("  DB_PORT           PostgreSQL port (default: 5432)")
	fmt.Println("  DB_USERNAME       PostgreSQL username")
	fmt.Println("  DB_PASSWORD       PostgreSQL password")
	fmt.Println("  DB_DATABASE       PostgreSQL database name")
	fmt.Println("  SLACK_TOKEN       Slack API token (required for sending)")
	fmt.Println("  SLACK_COOKIE      Slack 'd' cookie (optional)")
	fmt.Println("  SLACK_TIMEOUT     HTTP timeout in seconds (default: 30)")
}
