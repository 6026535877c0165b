package workcalendar

import (
	"fmt"
	"strings"
	"time"
)

// Calendar counts paid business days given the weekly rest days.
type Calendar struct {
	RestDays []time.Weekday
}

// Default rests on Saturday and Sunday.
func Default() Calendar {
	return Calendar{RestDays: []time.Weekday{time.Saturday, time.Sunday}}
}

// StandardWorkDays returns the number of days in the month that are not rest days.
func (c Calendar) StandardWorkDays(month, year int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	count := 0
	for day := 0; day < daysInMonth; day++ {
		if !c.isRestDay(first.AddDate(0, 0, day).Weekday()) {
			count++
		}
	}
	return count
}

func (c Calendar) isRestDay(wd time.Weekday) bool {
	for _, rest := range c.RestDays {
		if rest == wd {
			return true
		}
	}
	return false
}

// StandardWorkDays uses the default Saturday/Sunday calendar.
func StandardWorkDays(month, year int) int {
	return Default().StandardWorkDays(month, year)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseRestDays parses a comma-separated list such as "saturday,sunday".
func ParseRestDays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		wd, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one rest day is required")
	}
	return days, nil
}
