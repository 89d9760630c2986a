// Package schedule decides whether a clock time is admissible for a zone.
package schedule

import (
	"strings"
	"time"

	"clocker/backend/internal/entity"

	"github.com/pkg/errors"
)

var (
	ErrZoneInactive  = errors.New("zone is inactive")
	ErrDayNotAllowed = errors.New("day is not allowed in this zone")
	ErrOutsideWindow = errors.New("time is outside the zone schedule")
	ErrMalformedZone = errors.New("zone schedule is malformed")
)

var weekdays = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

// IsClockValid reports whether t is an admissible clock time for zone.
func IsClockValid(zone entity.Zone, t time.Time) bool {
	return Check(zone, t) == nil
}

// Check is IsClockValid with the reason for a rejection. t is evaluated in
// its own location; callers convert it to the business time zone first.
func Check(zone entity.Zone, t time.Time) error {
	if !zone.Active {
		return ErrZoneInactive
	}

	days, err := ParseDays(zone.Days)
	if err != nil {
		return ErrMalformedZone
	}
	if _, ok := days[t.Weekday()]; !ok {
		return ErrDayNotAllowed
	}

	start, err := ParseTimeOfDay(zone.StartTime)
	if err != nil {
		return ErrMalformedZone
	}
	end, err := ParseTimeOfDay(zone.EndTime)
	if err != nil {
		return ErrMalformedZone
	}

	tod := TimeOfDay(t)
	if tod < start || tod > end {
		return ErrOutsideWindow
	}

	return nil
}

// ParseDays converts weekday names (MONDAY, monday, Mon) into a set.
func ParseDays(names []string) (map[time.Weekday]struct{}, error) {
	set := make(map[time.Weekday]struct{}, len(names))
	for _, name := range names {
		d, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		set[d] = struct{}{}
	}
	return set, nil
}

// ParseWeekday accepts the full English weekday name or its three letter
// prefix, in any case.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if d, ok := weekdays[n]; ok {
		return d, nil
	}
	if len(n) == 3 {
		for full, d := range weekdays {
			if strings.HasPrefix(full, n) {
				return d, nil
			}
		}
	}
	return 0, errors.Errorf("unknown weekday %q", name)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into the offset from midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(t), nil
		}
	}
	return 0, errors.Errorf("invalid time of day %q", s)
}

// TimeOfDay returns the offset of t from its own midnight.
func TimeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// FormatTimeOfDay renders d as "HH:MM".
func FormatTimeOfDay(d time.Duration) string {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("15:04")
}
