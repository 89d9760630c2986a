// Package clocking turns clock events into daily attendance records.
//
// The first event of a person on a calendar day opens a record, the second
// closes it and any later event of that day is ignored. Days are computed in
// the business location, not in UTC.
package clocking

import (
	"context"
	"time"

	"clocker/backend/internal/entity"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Ledger is the attendance store the pairing reads and writes.
// FindByPersonDay returns nil, nil when the person has no record that day.
type Ledger interface {
	FindByPersonDay(ctx context.Context, personID string, day date.Date) (*entity.Attendance, error)
	Create(ctx context.Context, attendance entity.Attendance) error
	SetExit(ctx context.Context, id string, exit time.Time, exitEventID string) error
}

// Outcome tells what a clock event did to the ledger.
type Outcome string

const (
	OutcomeEntry   Outcome = "ENTRY"
	OutcomeExit    Outcome = "EXIT"
	OutcomeIgnored Outcome = "IGNORED"
)

var (
	ErrOutOfOrder    = errors.New("clock time is before the recorded entry")
	ErrMissingPerson = errors.New("clock event has no person")
)

// Result is the record affected by a clock event.
type Result struct {
	Outcome       Outcome           `json:"outcome"`
	Attendance    entity.Attendance `json:"attendance"`
	MinutesWorked int64             `json:"minutes_worked"`
}

type Pairer struct {
	ledger Ledger
	locker Locker
	loc    *time.Location
	newID  func() string
}

// NewPairer returns a Pairer computing work days in loc. A nil locker
// serializes per person inside this process only.
func NewPairer(ledger Ledger, locker Locker, loc *time.Location) *Pairer {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Pairer{
		ledger: ledger,
		locker: locker,
		loc:    loc,
		newID:  uuid.NewString,
	}
}

// Process applies event to the ledger.
func (p *Pairer) Process(ctx context.Context, event entity.ClockEvent) (Result, error) {
	if event.PersonID == "" {
		return Result{}, ErrMissingPerson
	}

	unlock, err := p.locker.Lock(ctx, event.PersonID)
	if err != nil {
		return Result{}, errors.Wrap(err, "locking person ledger")
	}
	defer unlock()

	day := WorkDay(event.ClockedAt, p.loc)

	current, err := p.ledger.FindByPersonDay(ctx, event.PersonID, day)
	if err != nil {
		return Result{}, errors.Wrap(err, "finding attendance")
	}

	logger := log.Ctx(ctx).With().
		Str("person_id", event.PersonID).
		Str("work_day", day.String()).
		Logger()

	if current == nil {
		attendance := entity.Attendance{
			ID:           p.newID(),
			PersonID:     event.PersonID,
			WorkDay:      day,
			EntryTime:    event.ClockedAt,
			EntryEventID: event.ID,
		}
		if err := p.ledger.Create(ctx, attendance); err != nil {
			return Result{}, errors.Wrap(err, "creating attendance")
		}

		logger.Info().Str("attendance_id", attendance.ID).Msg("entry recorded")
		return Result{Outcome: OutcomeEntry, Attendance: attendance}, nil
	}

	if !current.Open() {
		logger.Debug().Str("attendance_id", current.ID).Msg("attendance already closed, event ignored")
		return Result{Outcome: OutcomeIgnored, Attendance: *current, MinutesWorked: current.MinutesWorked()}, nil
	}

	if event.ClockedAt.Before(current.EntryTime) {
		return Result{}, ErrOutOfOrder
	}

	if err := p.ledger.SetExit(ctx, current.ID, event.ClockedAt, event.ID); err != nil {
		return Result{}, errors.Wrap(err, "closing attendance")
	}

	closed := *current
	exit := event.ClockedAt
	closed.ExitTime = &exit
	closed.ExitEventID = event.ID

	logger.Info().
		Str("attendance_id", closed.ID).
		Int64("minutes_worked", closed.MinutesWorked()).
		Msg("exit recorded")

	return Result{Outcome: OutcomeExit, Attendance: closed, MinutesWorked: closed.MinutesWorked()}, nil
}

// WorkDay is the calendar day of t in loc.
func WorkDay(t time.Time, loc *time.Location) date.Date {
	lt := t.In(loc)
	return date.Date{Time: time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)}
}
