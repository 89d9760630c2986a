package entity

import (
	"time"

	"github.com/Azure/go-autorest/autorest/date"
)

// Attendance is the paired entry/exit summary of one person on one calendar
// day. ExitTime is nil and ExitEventID empty while the record is open.
type Attendance struct {
	ID           string     `json:"id"`
	PersonID     string     `json:"person_id"`
	WorkDay      date.Date  `json:"work_day"`
	EntryTime    time.Time  `json:"entry_time"`
	ExitTime     *time.Time `json:"exit_time"`
	EntryEventID string     `json:"entry_event_id"`
	ExitEventID  string     `json:"exit_event_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Open reports whether the exit has not been recorded yet.
func (a Attendance) Open() bool {
	return a.ExitTime == nil
}

// MinutesWorked is the whole number of minutes between entry and exit,
// truncated; zero while the record is open.
func (a Attendance) MinutesWorked() int64 {
	if a.ExitTime == nil || a.EntryTime.IsZero() {
		return 0
	}

	d := a.ExitTime.Sub(a.EntryTime)
	if d < 0 {
		return 0
	}
	return int64(d / time.Minute)
}
