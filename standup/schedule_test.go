package standup

import (
	"errors"
	"reflect"
	"testing"

	"github.com/coveord/standupbot"
)

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name         string
		timeOfDay    string
		excludedDays string
		want         *Schedule
	}{
		{
			name:         "weekend excluded",
			timeOfDay:    "09:00",
			excludedDays: "0,6",
			want:         &Schedule{Minute: 0, Hour: 9, Days: []int{1, 2, 3, 4, 5}},
		},
		{
			name:         "sunday and friday excluded",
			timeOfDay:    "09:30",
			excludedDays: "0,5",
			want:         &Schedule{Minute: 30, Hour: 9, Days: []int{1, 2, 3, 4, 6}},
		},
		{
			name:         "tokens with spaces",
			timeOfDay:    "17:45",
			excludedDays: "0, 5, 6",
			want:         &Schedule{Minute: 45, Hour: 17, Days: []int{1, 2, 3, 4}},
		},
		{
			name:         "invalid tokens dropped",
			timeOfDay:    "09:00",
			excludedDays: "0,7,8,invalid",
			want:         &Schedule{Minute: 0, Hour: 9, Days: []int{1, 2, 3, 4, 5, 6}},
		},
		{
			name:         "no exclusions",
			timeOfDay:    "00:00",
			excludedDays: "",
			want:         &Schedule{Minute: 0, Hour: 0, Days: []int{0, 1, 2, 3, 4, 5, 6}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchedule(tt.timeOfDay, tt.excludedDays)
			if err != nil {
				t.Fatalf("ParseSchedule(%q, %q) error: %v", tt.timeOfDay, tt.excludedDays, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSchedule(%q, %q) = %+v, want %+v", tt.timeOfDay, tt.excludedDays, got, tt.want)
			}
		})
	}
}

func TestParseScheduleInvalidTime(t *testing.T) {
	for _, timeOfDay := range []string{"", "9", "09:00:00", "9am", "24:00", "12:60", "-1:30", "ab:cd"} {
		if _, err := ParseSchedule(timeOfDay, ""); !errors.Is(err, standupbot.ErrInvalidTime) {
			t.Errorf("ParseSchedule(%q) error = %v, want ErrInvalidTime", timeOfDay, err)
		}
	}
}

func TestParseScheduleAllDaysExcluded(t *testing.T) {
	if _, err := ParseSchedule("09:00", "0,1,2,3,4,5,6"); !errors.Is(err, standupbot.ErrAllDaysExcluded) {
		t.Errorf("error = %v, want ErrAllDaysExcluded", err)
	}
}

func TestCronSpec(t *testing.T) {
	schedule, err := ParseSchedule("09:00", "0,5")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := schedule.CronSpec(), "0 9 * * 1,2,3,4,6"; got != want {
		t.Errorf("CronSpec() = %q, want %q", got, want)
	}
}
