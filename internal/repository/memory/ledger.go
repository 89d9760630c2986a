// Package memory holds in-process repositories used by tests and by local
// runs without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"clocker/backend/internal/entity"
	"clocker/backend/internal/repository/postgres"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

type dayKey struct {
	personID string
	day      string
}

// Ledger is a map backed attendance ledger.
type Ledger struct {
	mu    sync.RWMutex
	byID  map[string]*entity.Attendance
	byDay map[dayKey]string
	now   func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		byID:  make(map[string]*entity.Attendance),
		byDay: make(map[dayKey]string),
		now:   time.Now,
	}
}

func (l *Ledger) FindByPersonDay(ctx context.Context, personID string, day date.Date) (*entity.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.byDay[dayKey{personID, day.String()}]
	if !ok {
		return nil, nil
	}

	a := *l.byID[id]
	return &a, nil
}

func (l *Ledger) Create(ctx context.Context, attendance entity.Attendance) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := dayKey{attendance.PersonID, attendance.WorkDay.String()}
	if _, ok := l.byDay[key]; ok {
		return errors.Wrapf(postgres.ErrAlreadyExists, "attendance of %s on %s", attendance.PersonID, key.day)
	}
	if _, ok := l.byID[attendance.ID]; ok {
		return errors.Wrapf(postgres.ErrAlreadyExists, "attendance %s", attendance.ID)
	}

	if attendance.CreatedAt.IsZero() {
		attendance.CreatedAt = l.now()
	}
	l.byID[attendance.ID] = &attendance
	l.byDay[key] = attendance.ID

	return nil
}

func (l *Ledger) SetExit(ctx context.Context, id string, exit time.Time, exitEventID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.byID[id]
	if !ok {
		return errors.Wrapf(postgres.ErrNotFound, "attendance %s", id)
	}
	if a.ExitTime != nil {
		return errors.Errorf("attendance %s is already closed", id)
	}

	updated := l.now()
	a.ExitTime = &exit
	a.ExitEventID = exitEventID
	a.UpdatedAt = &updated

	return nil
}

// List returns every record ordered by work day then entry time.
func (l *Ledger) List(ctx context.Context) ([]entity.Attendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	list := make([]entity.Attendance, 0, len(l.byID))
	for _, a := range l.byID {
		list = append(list, *a)
	}
	l.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].WorkDay.Equal(list[j].WorkDay.Time) {
			return list[i].WorkDay.Before(list[j].WorkDay.Time)
		}
		return list[i].EntryTime.Before(list[j].EntryTime)
	})

	return list, nil
}
