package standup

import "github.com/coveord/standupbot"

// pickLeader chooses today's standup leader uniformly at random, or nil
// for an empty member list. intn must behave like rand.Intn; it is
// passed in so tests can seed it.
func pickLeader(members []standupbot.User, intn func(n int) int) *standupbot.User {
	if len(members) == 0 {
		return nil
	}
	return &members[intn(len(members))]
}
