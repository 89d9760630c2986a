package clocking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"clocker/backend/internal/entity"
	"clocker/backend/internal/repository/memory"
	"clocker/backend/internal/service/clocking"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

var utc = time.UTC

func event(id, person string, at time.Time) entity.ClockEvent {
	return entity.ClockEvent{ID: id, PersonID: person, ClockedAt: at, Type: entity.DefaultClockType}
}

func at(day, hour, min int) time.Time {
	return time.Date(2024, time.January, day, hour, min, 0, 0, utc)
}

func TestProcessEntryThenExit(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	p := clocking.NewPairer(ledger, nil, utc)

	res, err := p.Process(ctx, event("e1", "P1", at(1, 8, 5)))
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if res.Outcome != clocking.OutcomeEntry || !res.Attendance.Open() {
		t.Fatalf("expected open entry, got %+v", res)
	}
	if res.Attendance.EntryEventID != "e1" || res.Attendance.ExitEventID != "" {
		t.Fatalf("unexpected event ids: %+v", res.Attendance)
	}

	res, err = p.Process(ctx, event("e2", "P1", at(1, 17, 10)))
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if res.Outcome != clocking.OutcomeExit {
		t.Fatalf("expected EXIT, got %s", res.Outcome)
	}
	if res.MinutesWorked != 545 {
		t.Fatalf("expected 545 minutes, got %d", res.MinutesWorked)
	}

	list, _ := ledger.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one record, got %d", len(list))
	}
	if list[0].ExitEventID != "e2" || list[0].ExitTime == nil || !list[0].ExitTime.Equal(at(1, 17, 10)) {
		t.Fatalf("record not closed by e2: %+v", list[0])
	}
}

func TestProcessThirdEventIgnored(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	p := clocking.NewPairer(ledger, nil, utc)

	for i, ts := range []time.Time{at(1, 8, 0), at(1, 12, 0)} {
		if _, err := p.Process(ctx, event(string(rune('a'+i)), "P1", ts)); err != nil {
			t.Fatal(err)
		}
	}

	res, err := p.Process(ctx, event("c", "P1", at(1, 18, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != clocking.OutcomeIgnored {
		t.Fatalf("expected IGNORED, got %s", res.Outcome)
	}

	list, _ := ledger.List(ctx)
	if len(list) != 1 || !list[0].ExitTime.Equal(at(1, 12, 0)) || list[0].ExitEventID != "b" {
		t.Fatalf("closed record was modified: %+v", list)
	}
}

func TestProcessNewDayOpensNewRecord(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	p := clocking.NewPairer(ledger, nil, utc)

	steps := []struct {
		at   time.Time
		want clocking.Outcome
	}{
		{at(1, 8, 0), clocking.OutcomeEntry},
		{at(1, 16, 0), clocking.OutcomeExit},
		{at(2, 8, 0), clocking.OutcomeEntry},
		{at(3, 9, 0), clocking.OutcomeEntry},
	}
	for i, s := range steps {
		res, err := p.Process(ctx, event(string(rune('a'+i)), "P1", s.at))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.Outcome != s.want {
			t.Fatalf("step %d: expected %s, got %s", i, s.want, res.Outcome)
		}
	}

	list, _ := ledger.List(ctx)
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	if !list[1].Open() || !list[2].Open() {
		t.Fatalf("later days should stay open: %+v", list)
	}
}

func TestProcessPersonsAreIndependent(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	p := clocking.NewPairer(ledger, nil, utc)

	if _, err := p.Process(ctx, event("a", "P1", at(1, 8, 0))); err != nil {
		t.Fatal(err)
	}
	res, err := p.Process(ctx, event("b", "P2", at(1, 9, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != clocking.OutcomeEntry {
		t.Fatalf("P2 should get its own entry, got %s", res.Outcome)
	}
}

func TestProcessOutOfOrder(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	p := clocking.NewPairer(ledger, nil, utc)

	if _, err := p.Process(ctx, event("a", "P1", at(1, 10, 0))); err != nil {
		t.Fatal(err)
	}
	_, err := p.Process(ctx, event("b", "P1", at(1, 9, 0)))
	if !errors.Is(err, clocking.ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}

	list, _ := ledger.List(ctx)
	if !list[0].Open() {
		t.Fatalf("record should be untouched: %+v", list[0])
	}
}

func TestProcessSameInstantExit(t *testing.T) {
	ctx := context.Background()
	p := clocking.NewPairer(memory.NewLedger(), nil, utc)

	if _, err := p.Process(ctx, event("a", "P1", at(1, 10, 0))); err != nil {
		t.Fatal(err)
	}
	res, err := p.Process(ctx, event("b", "P1", at(1, 10, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != clocking.OutcomeExit || res.MinutesWorked != 0 {
		t.Fatalf("expected zero minute exit, got %+v", res)
	}
}

func TestProcessUsesLocationForDay(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("UTC-6", -6*60*60)
	p := clocking.NewPairer(memory.NewLedger(), nil, loc)

	// 04:00 UTC on the 2nd is still the 1st at UTC-6.
	first, err := p.Process(ctx, event("a", "P1", time.Date(2024, 1, 1, 20, 0, 0, 0, loc)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Process(ctx, event("b", "P1", time.Date(2024, 1, 2, 4, 0, 0, 0, utc)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != clocking.OutcomeExit || res.Attendance.ID != first.Attendance.ID {
		t.Fatalf("expected exit on the local day, got %+v", res)
	}
	if got := first.Attendance.WorkDay.String(); got != "2024-01-01" {
		t.Fatalf("expected work day 2024-01-01, got %s", got)
	}
}

func TestProcessMissingPerson(t *testing.T) {
	p := clocking.NewPairer(memory.NewLedger(), nil, utc)
	if _, err := p.Process(context.Background(), event("a", "", at(1, 8, 0))); !errors.Is(err, clocking.ErrMissingPerson) {
		t.Fatalf("expected ErrMissingPerson, got %v", err)
	}
}

type failingLedger struct{ memory.Ledger }

func (*failingLedger) FindByPersonDay(context.Context, string, date.Date) (*entity.Attendance, error) {
	return nil, errors.New("connection reset")
}

func TestProcessLedgerFailure(t *testing.T) {
	p := clocking.NewPairer(&failingLedger{}, nil, utc)
	_, err := p.Process(context.Background(), event("a", "P1", at(1, 8, 0)))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestProcessConcurrentEventsPairOnce(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()
	p := clocking.NewPairer(ledger, nil, utc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[clocking.Outcome]int{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Process(ctx, event(string(rune('a'+i)), "P1", at(1, 8, 0)))
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			outcomes[res.Outcome]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if outcomes[clocking.OutcomeEntry] != 1 || outcomes[clocking.OutcomeExit] != 1 || outcomes[clocking.OutcomeIgnored] != 8 {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := clocking.NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "P1")
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "P1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
