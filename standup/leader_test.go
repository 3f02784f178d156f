package standup

import (
	"math/rand"
	"testing"

	"github.com/coveord/standupbot"
)

func TestPickLeader(t *testing.T) {
	members := []standupbot.User{
		{ID: 1, Name: "John Doe"},
		{ID: 2, Name: "Jane Smith"},
		{ID: 3, Name: "Bob Johnson"},
	}

	rng := rand.New(rand.NewSource(42))
	leader := pickLeader(members, rng.Intn)
	if leader == nil {
		t.Fatal("pickLeader returned nil for non-empty members")
	}

	// Every member must be reachable.
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		seen[pickLeader(members, rng.Intn).ID] = true
	}
	if len(seen) != len(members) {
		t.Errorf("only %d of %d members ever picked", len(seen), len(members))
	}
}

func TestPickLeaderEmpty(t *testing.T) {
	if leader := pickLeader(nil, rand.Intn); leader != nil {
		t.Errorf("pickLeader(nil) = %+v, want nil", leader)
	}
}
