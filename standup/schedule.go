package standup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coveord/standupbot"
)

// Schedule is when a team's standup fires: a time of day plus the
// weekdays on which it is allowed to run (0=Sunday .. 6=Saturday).
// Days is never empty.
type Schedule struct {
	Minute int
	Hour   int
	Days   []int
}

// ParseSchedule turns a team's schedule configuration into a Schedule.
// timeOfDay must be a 24-hour HH:MM value; excludedDays is a
// comma-separated list of weekday numbers. Tokens that are not integers
// in [0,6] are dropped, not reported. Returns ErrInvalidTime or
// ErrAllDaysExcluded on rejection.
func ParseSchedule(timeOfDay, excludedDays string) (*Schedule, error) {
	parts := strings.Split(timeOfDay, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q", standupbot.ErrInvalidTime, timeOfDay)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return nil, fmt.Errorf("%w: %q", standupbot.ErrInvalidTime, timeOfDay)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("%w: %q", standupbot.ErrInvalidTime, timeOfDay)
	}

	excluded := parseExcludedDays(excludedDays)

	var days []int
	for day := 0; day <= 6; day++ {
		if !excluded[day] {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, standupbot.ErrAllDaysExcluded
	}

	return &Schedule{Minute: minute, Hour: hour, Days: days}, nil
}

func parseExcludedDays(excludedDays string) map[int]bool {
	excluded := map[int]bool{}
	for _, token := range strings.Split(excludedDays, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || day < 0 || day > 6 {
			continue
		}
		excluded[day] = true
	}
	return excluded
}

// CronSpec renders the schedule as a five-field cron expression,
// for example "0 9 * * 1,2,3,4,6".
func (s *Schedule) CronSpec() string {
	days := make([]string, len(s.Days))
	for i, day := range s.Days {
		days[i] = strconv.Itoa(day)
	}
	return fmt.Sprintf("%d %d * * %s", s.Minute, s.Hour, strings.Join(days, ","))
}
