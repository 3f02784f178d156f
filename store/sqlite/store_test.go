package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coveord/standupbot"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestMigrateIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &standupbot.User{Name: "John Doe", Email: "john.doe@example.com", SlackUserID: "U1234ABCD"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("CreateUser did not assign an ID")
	}

	got, err := store.User(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Name != "John Doe" || got.Email != "john.doe@example.com" || got.SlackUserID != "U1234ABCD" {
		t.Errorf("User = %+v", got)
	}
	if got.IsAdmin {
		t.Error("IsAdmin = true, want false")
	}

	byName, err := store.UserByName(ctx, "John Doe")
	if err != nil {
		t.Fatalf("get user by name: %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("UserByName ID = %d, want %d", byName.ID, user.ID)
	}

	if _, err := store.User(ctx, 999); !errors.Is(err, standupbot.ErrUserNotFound) {
		t.Errorf("User(999) error = %v, want ErrUserNotFound", err)
	}
	if _, err := store.UserByName(ctx, "nobody"); !errors.Is(err, standupbot.ErrUserNotFound) {
		t.Errorf("UserByName error = %v, want ErrUserNotFound", err)
	}
}

func TestTeams(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	team := &standupbot.Team{
		Name:         "Engineering Team",
		Description:  "Daily engineering standup",
		ChannelID:    "C1234567890",
		ScheduleTime: "09:00",
		ExcludedDays: "0,5",
	}
	if err := store.CreateTeam(ctx, team); err != nil {
		t.Fatalf("create team: %v", err)
	}

	got, err := store.Team(ctx, team.ID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if got.Name != "Engineering Team" || got.ChannelID != "C1234567890" ||
		got.ScheduleTime != "09:00" || got.ExcludedDays != "0,5" {
		t.Errorf("Team = %+v", got)
	}

	got.ScheduleTime = "10:30"
	got.ExcludedDays = "0,6"
	if err := store.UpdateTeam(ctx, got); err != nil {
		t.Fatalf("update team: %v", err)
	}
	updated, err := store.Team(ctx, team.ID)
	if err != nil {
		t.Fatalf("get team after update: %v", err)
	}
	if updated.ScheduleTime != "10:30" || updated.ExcludedDays != "0,6" {
		t.Errorf("Team after update = %+v", updated)
	}

	if err := store.DeleteTeam(ctx, team.ID); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	if _, err := store.Team(ctx, team.ID); !errors.Is(err, standupbot.ErrTeamNotFound) {
		t.Errorf("Team after delete error = %v, want ErrTeamNotFound", err)
	}
	if err := store.DeleteTeam(ctx, team.ID); !errors.Is(err, standupbot.ErrTeamNotFound) {
		t.Errorf("second delete error = %v, want ErrTeamNotFound", err)
	}
	if err := store.UpdateTeam(ctx, team); !errors.Is(err, standupbot.ErrTeamNotFound) {
		t.Errorf("update deleted team error = %v, want ErrTeamNotFound", err)
	}
}

func TestTeamsWithChannel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	withChannel := &standupbot.Team{Name: "A Team", ChannelID: "C1"}
	noChannel := &standupbot.Team{Name: "B Team"}
	if err := store.CreateTeam(ctx, withChannel); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateTeam(ctx, noChannel); err != nil {
		t.Fatal(err)
	}

	all, err := store.Teams(ctx)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Teams() returned %d teams, want 2", len(all))
	}

	eligible, err := store.TeamsWithChannel(ctx)
	if err != nil {
		t.Fatalf("list teams with channel: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != withChannel.ID {
		t.Errorf("TeamsWithChannel() = %+v, want only the team with a channel", eligible)
	}
}

func TestMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	team := &standupbot.Team{Name: "Engineering Team", ChannelID: "C1"}
	if err := store.CreateTeam(ctx, team); err != nil {
		t.Fatal(err)
	}
	first := &standupbot.User{Name: "John Doe", Email: "john@example.com"}
	second := &standupbot.User{Name: "Jane Smith", Email: "jane@example.com"}
	for _, user := range []*standupbot.User{first, second} {
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.AddMember(ctx, team.ID, first.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := store.AddMember(ctx, team.ID, second.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	// Re-adding must not duplicate the membership.
	if err := store.AddMember(ctx, team.ID, first.ID); err != nil {
		t.Fatalf("re-add member: %v", err)
	}

	got, err := store.Team(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("team has %d members, want 2", len(got.Members))
	}
	// Members come back in join order.
	if got.Members[0].Name != "John Doe" || got.Members[1].Name != "Jane Smith" {
		t.Errorf("members = %v, %v", got.Members[0].Name, got.Members[1].Name)
	}

	if err := store.AddMember(ctx, 999, first.ID); !errors.Is(err, standupbot.ErrTeamNotFound) {
		t.Errorf("add member to missing team error = %v, want ErrTeamNotFound", err)
	}
	if err := store.AddMember(ctx, team.ID, 999); !errors.Is(err, standupbot.ErrUserNotFound) {
		t.Errorf("add missing user error = %v, want ErrUserNotFound", err)
	}

	if err := store.RemoveMember(ctx, team.ID, first.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	got, err = store.Team(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Members) != 1 || got.Members[0].ID != second.ID {
		t.Errorf("members after removal = %+v", got.Members)
	}
}

func TestStandups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	team := &standupbot.Team{Name: "Engineering Team", ChannelID: "C1"}
	if err := store.CreateTeam(ctx, team); err != nil {
		t.Fatal(err)
	}

	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.Local)

	got, err := store.StandupByTeamAndDate(ctx, team.ID, date)
	if err != nil {
		t.Fatalf("lookup on empty store: %v", err)
	}
	if got != nil {
		t.Fatalf("StandupByTeamAndDate = %+v, want nil", got)
	}

	standup := &standupbot.Standup{
		TeamID:    team.ID,
		ChannelID: "C1",
		ThreadTS:  "1234567890.123456",
		Date:      date,
		Status:    standupbot.StatusPending,
		SentAt:    time.Now(),
	}
	if err := store.CreateStandup(ctx, standup); err != nil {
		t.Fatalf("create standup: %v", err)
	}
	if standup.ID == 0 {
		t.Fatal("CreateStandup did not assign an ID")
	}

	got, err = store.StandupByTeamAndDate(ctx, team.ID, date)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got == nil {
		t.Fatal("StandupByTeamAndDate = nil, want the stored record")
	}
	if got.ThreadTS != "1234567890.123456" || got.Status != standupbot.StatusPending {
		t.Errorf("Standup = %+v", got)
	}
	if !got.Date.Equal(date) {
		t.Errorf("Date = %v, want %v", got.Date, date)
	}

	// A different date or team must not match.
	if got, _ := store.StandupByTeamAndDate(ctx, team.ID, date.AddDate(0, 0, 1)); got != nil {
		t.Errorf("lookup next day = %+v, want nil", got)
	}
	if got, _ := store.StandupByTeamAndDate(ctx, 999, date); got != nil {
		t.Errorf("lookup other team = %+v, want nil", got)
	}
}

func TestStandupWithoutReceiptDoesNotBlock(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	team := &standupbot.Team{Name: "Engineering Team", ChannelID: "C1"}
	if err := store.CreateTeam(ctx, team); err != nil {
		t.Fatal(err)
	}

	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.Local)
	// A record without a thread timestamp was never delivered; it must
	// not count as a sent standup.
	undelivered := &standupbot.Standup{
		TeamID:    team.ID,
		ChannelID: "C1",
		Date:      date,
		Status:    standupbot.StatusPending,
	}
	if err := store.CreateStandup(ctx, undelivered); err != nil {
		t.Fatal(err)
	}

	got, err := store.StandupByTeamAndDate(ctx, team.ID, date)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("StandupByTeamAndDate = %+v, want nil for undelivered record", got)
	}
}

func TestSeed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := standupbot.Seed(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	teams, err := store.Teams(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 2 {
		t.Fatalf("seeded %d teams, want 2", len(teams))
	}
	admin, err := store.UserByName(ctx, "Admin User")
	if err != nil {
		t.Fatalf("seeded admin missing: %v", err)
	}
	if !admin.IsAdmin {
		t.Error("seeded admin is not an admin")
	}
}
