package standupbot

import (
	"context"
	"fmt"
	"os"
)

// Seed fills the store with a usable starting point: an admin, three
// Slack-mapped users and two scheduled teams. Intended for development
// databases; running it twice creates duplicates.
func Seed(ctx context.Context, store Store) error {
	admin := &User{
		Name:    "Admin User",
		Email:   "admin@example.com",
		IsAdmin: true,
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	users := []*User{
		{Name: "John Doe", Email: "john@example.com", SlackUserID: "U1234ABCD"},
		{Name: "Jane Smith", Email: "jane@example.com", SlackUserID: "U5678EFGH"},
		{Name: "Bob Johnson", Email: "bob@example.com", SlackUserID: "U9012IJKL"},
	}
	for _, user := range users {
		if err := store.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create user %s: %w", user.Name, err)
		}
	}

	channelID := os.Getenv("SLACK_CHANNEL_ID")
	if channelID == "" {
		channelID = "C1234567890"
	}

	engineering := &Team{
		Name:         "Engineering Team",
		Description:  "Core engineering team",
		ChannelID:    channelID,
		ScheduleTime: "09:00",
		ExcludedDays: "0,5",
		OwnerUserID:  admin.ID,
	}
	if err := store.CreateTeam(ctx, engineering); err != nil {
		return fmt.Errorf("create team %s: %w", engineering.Name, err)
	}
	for _, user := range users {
		if err := store.AddMember(ctx, engineering.ID, user.ID); err != nil {
			return fmt.Errorf("add %s to %s: %w", user.Name, engineering.Name, err)
		}
	}

	product := &Team{
		Name:         "Product Team",
		Description:  "Product management team",
		ChannelID:    "C0987654321",
		ScheduleTime: "10:00",
		ExcludedDays: "0,6",
		OwnerUserID:  admin.ID,
	}
	if err := store.CreateTeam(ctx, product); err != nil {
		return fmt.Errorf("create team %s: %w", product.Name, err)
	}
	for _, user := range users[1:] {
		if err := store.AddMember(ctx, product.ID, user.ID); err != nil {
			return fmt.Errorf("add %s to %s: %w", user.Name, product.Name, err)
		}
	}

	return nil
}
