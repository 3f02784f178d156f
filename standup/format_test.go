package standup

import (
	"strings"
	"testing"
	"time"
)

func TestFormatMessage(t *testing.T) {
	date := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	text := FormatMessage("Engineering Team", "<@U1234ABCD>", date)

	for _, want := range []string{
		"*Standup #Engineering Team - Monday, March 3, 2025*",
		"<@U1234ABCD> will facilitate today's standup!",
		"*Done*",
		"*Todo*",
		"*Blockers*",
		"_Reply in thread. Remember to add due dates!_",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestFormatMessageUnassignedLeader(t *testing.T) {
	date := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
	text := FormatMessage("Product Team", unassignedLeader, date)
	if !strings.Contains(text, "unassigned will facilitate") {
		t.Errorf("message missing placeholder leader:\n%s", text)
	}
}
