package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"clocker/backend/internal/entity"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

type staticSource struct {
	records []Record
	got     Filter
}

func (s *staticSource) ListForReport(_ context.Context, f Filter) ([]Record, error) {
	s.got = f
	return s.records, nil
}

func day(y int, m time.Month, d int) date.Date {
	return date.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func record(person, name, zoneStart string, d int, entry, exit string) Record {
	parse := func(s string) time.Time {
		t, _ := time.Parse("15:04", s)
		return time.Date(2024, time.March, d, t.Hour(), t.Minute(), 0, 0, time.UTC)
	}

	a := entity.Attendance{
		ID:        person + "-" + string(rune('0'+d)),
		PersonID:  person,
		WorkDay:   day(2024, time.March, d),
		EntryTime: parse(entry),
	}
	if exit != "" {
		e := parse(exit)
		a.ExitTime = &e
	}
	return Record{Attendance: a, PersonName: name, ZoneStart: zoneStart}
}

func newTestService(src Source) *Service {
	s := NewService(src, Config{Company: "Clocker", Location: time.UTC})
	s.now = func() time.Time { return time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestBuild(t *testing.T) {
	src := &staticSource{records: []Record{
		record("P1", "Ana Mora", "08:00", 4, "08:05", "17:10"),
		record("P1", "Ana Mora", "08:00", 5, "07:55", "16:00"),
		record("P2", "Luis Vega", "", 4, "08:00", ""),
	}}
	s := newTestService(src)

	rep, err := s.Build(context.Background(), Filter{From: day(2024, 3, 1), To: day(2024, 3, 31)})
	if err != nil {
		t.Fatal(err)
	}

	if len(rep.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rep.Rows))
	}
	first := rep.Rows[0]
	if first.Entry != "08:05" || first.Exit != "17:10" || first.Worked != "09:05" || !first.Late {
		t.Fatalf("unexpected first row %+v", first)
	}
	open := rep.Rows[2]
	if open.Exit != "-" || open.Worked != "00:00" || open.Late {
		t.Fatalf("unexpected open row %+v", open)
	}

	if len(rep.Summary) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(rep.Summary))
	}
	ana := rep.Summary[0]
	if ana.PersonID != "P1" || ana.Days != 2 || ana.TotalMinutes != 545+485 || ana.Total != "17:10" || ana.LateArrivals != 1 {
		t.Fatalf("unexpected summary %+v", ana)
	}
	if rep.Total != "17:10" || rep.LateArrivals != 1 {
		t.Fatalf("unexpected totals %s / %d", rep.Total, rep.LateArrivals)
	}
}

func TestBuildOfficialEntryOverride(t *testing.T) {
	src := &staticSource{records: []Record{record("P1", "Ana", "08:00", 4, "08:30", "")}}
	s := newTestService(src)

	rep, err := s.Build(context.Background(), Filter{From: day(2024, 3, 1), To: day(2024, 3, 31), OfficialEntry: "09:00"})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Rows[0].Late {
		t.Fatal("08:30 is not late against 09:00")
	}

	if _, err := s.Build(context.Background(), Filter{From: day(2024, 3, 1), To: day(2024, 3, 31), OfficialEntry: "nine"}); err == nil {
		t.Fatal("expected error for malformed official entry")
	}
}

func TestValidateRange(t *testing.T) {
	today := day(2024, 4, 1)

	tests := []struct {
		name     string
		from, to date.Date
		want     error
	}{
		{"single day", today, today, nil},
		{"reversed", day(2024, 3, 2), day(2024, 3, 1), ErrRangeOrder},
		{"future end", day(2024, 3, 1), day(2024, 4, 2), ErrRangeFuture},
		{"exactly 365 days", day(2023, 4, 3), today, nil},
		{"366 days", day(2023, 4, 2), today, ErrRangeLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.from, tt.to, today, DefaultMaxDays)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestIsLate(t *testing.T) {
	at := func(h, m, s int) time.Time { return time.Date(2024, 1, 1, h, m, s, 0, time.UTC) }

	if IsLate(at(8, 0, 0), "08:00") {
		t.Error("on time entry marked late")
	}
	if !IsLate(at(8, 0, 1), "08:00") {
		t.Error("one second late not detected")
	}
	if IsLate(at(9, 0, 0), "bad") {
		t.Error("malformed official time must not mark late")
	}
}

func TestFormatMinutes(t *testing.T) {
	for m, want := range map[int64]string{0: "00:00", 545: "09:05", 6000: "100:00", -5: "00:00"} {
		if got := FormatMinutes(m); got != want {
			t.Errorf("FormatMinutes(%d) = %s, want %s", m, got, want)
		}
	}
}

func TestWriters(t *testing.T) {
	src := &staticSource{records: []Record{
		record("P1", "José Núñez", "08:00", 4, "08:05", "17:10"),
	}}
	rep, err := newTestService(src).Build(context.Background(), Filter{From: day(2024, 3, 1), To: day(2024, 3, 31)})
	if err != nil {
		t.Fatal(err)
	}

	var pdf bytes.Buffer
	if err := WritePDF(&pdf, rep); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a pdf")
	}

	var xlsx bytes.Buffer
	if err := WriteExcel(&xlsx, rep); err != nil {
		t.Fatalf("excel: %v", err)
	}
	f, err := excelize.OpenReader(&xlsx)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	v, err := f.GetCellValue(attendanceSheet, "F2")
	if err != nil || v != "09:05" {
		t.Fatalf("expected worked 09:05 in F2, got %q (%v)", v, err)
	}
	v, _ = f.GetCellValue(summarySheet, "F2")
	if v != "1" {
		t.Fatalf("expected 1 late arrival, got %q", v)
	}
}
