package standup

import (
	"fmt"
	"time"
)

const messageTemplate = `🌅 *Standup #%s - %s*

👨‍💼 *Meeting Leader:* %s will facilitate today's standup!

Good morning team! 👋 Let's crush it today!

✅ *Done* - What you completed (include tickets: PROJ-123)

📋 *Todo* - What you're working on today (tickets + due dates: "BUG-123 - due Friday")

🚧 *Blockers* - Any issues blocking you?

📝 *Example Format:*
` + "```" + `
✅ Done:
- Implemented user authentication - PROJ-123
- Fixed pagination bug - BUG-456

📋 Todo:
- Add password reset feature - PROJ-124 - due Friday
- Review API documentation - DOC-789 - due tomorrow

🚧 Blockers:
- Waiting for API keys from DevOps team
` + "```" + `

_Reply in thread. Remember to add due dates!_`

// FormatMessage renders the standup prompt for a team. leaderMention is
// either a Slack mention ("<@U123>") or a plain placeholder.
func FormatMessage(teamName, leaderMention string, date time.Time) string {
	return fmt.Sprintf(messageTemplate, teamName, formatDate(date), leaderMention)
}

func formatDate(date time.Time) string {
	return date.Format("Monday, January 2, 2006")
}
