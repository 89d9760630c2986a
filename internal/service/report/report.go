// Package report builds attendance reports over a date range and renders
// them as PDF or Excel.
package report

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/service/schedule"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

const (
	DefaultMaxDays       = 365
	DefaultOfficialEntry = "08:00"
	noTime               = "-"
)

var (
	ErrRangeOrder  = errors.New("start date must be before or equal to the end date")
	ErrRangeFuture = errors.New("dates cannot be in the future")
	ErrRangeLength = errors.New("date range is too long")
)

type Filter struct {
	From      date.Date `json:"from"`
	To        date.Date `json:"to"`
	PersonIDs []string  `json:"person_ids,omitempty"`
	ZoneCode  string    `json:"zone_code,omitempty"`
	// OfficialEntry overrides the zone start time when counting late
	// arrivals, "HH:MM".
	OfficialEntry string `json:"official_entry,omitempty"`
}

// Record is one attendance with the person and zone data needed to report it.
type Record struct {
	Attendance entity.Attendance
	PersonName string
	ZoneCode   string
	ZoneStart  string
}

type Source interface {
	ListForReport(ctx context.Context, filter Filter) ([]Record, error)
}

type Row struct {
	PersonID      string `json:"person_id"`
	PersonName    string `json:"person_name"`
	Date          string `json:"date"`
	Entry         string `json:"entry"`
	Exit          string `json:"exit"`
	Worked        string `json:"worked"`
	MinutesWorked int64  `json:"minutes_worked"`
	Late          bool   `json:"late"`
}

type Summary struct {
	PersonID     string `json:"person_id"`
	PersonName   string `json:"person_name"`
	Days         int    `json:"days"`
	TotalMinutes int64  `json:"total_minutes"`
	Total        string `json:"total"`
	LateArrivals int    `json:"late_arrivals"`
}

type Report struct {
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Filter       Filter    `json:"filter"`
	GeneratedAt  time.Time `json:"generated_at"`
	Rows         []Row     `json:"rows"`
	Summary      []Summary `json:"summary"`
	TotalMinutes int64     `json:"total_minutes"`
	Total        string    `json:"total"`
	LateArrivals int       `json:"late_arrivals"`
}

type Config struct {
	Company       string
	MaxDays       int
	OfficialEntry string
	Location      *time.Location
}

type Service struct {
	source Source
	cfg    Config
	now    func() time.Time
}

func NewService(source Source, cfg Config) *Service {
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = DefaultMaxDays
	}
	if cfg.OfficialEntry == "" {
		cfg.OfficialEntry = DefaultOfficialEntry
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Service{source: source, cfg: cfg, now: time.Now}
}

// Build validates the range and assembles the report rows and the per person
// summary.
func (s *Service) Build(ctx context.Context, filter Filter) (Report, error) {
	now := s.now().In(s.cfg.Location)
	today := date.Date{Time: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}

	if err := ValidateRange(filter.From, filter.To, today, s.cfg.MaxDays); err != nil {
		return Report{}, web.NewRequestError(err, http.StatusBadRequest)
	}

	if filter.OfficialEntry != "" {
		if _, err := schedule.ParseTimeOfDay(filter.OfficialEntry); err != nil {
			return Report{}, web.NewRequestError(errors.Wrap(err, "official entry"), http.StatusBadRequest)
		}
	}

	records, err := s.source.ListForReport(ctx, filter)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Title:       "Attendance report",
		Company:     s.cfg.Company,
		Filter:      filter,
		GeneratedAt: now,
		Rows:        make([]Row, 0, len(records)),
	}

	summaries := make(map[string]*Summary)
	for _, rec := range records {
		row := s.row(rec, filter.OfficialEntry)
		rep.Rows = append(rep.Rows, row)

		sum, ok := summaries[row.PersonID]
		if !ok {
			sum = &Summary{PersonID: row.PersonID, PersonName: row.PersonName}
			summaries[row.PersonID] = sum
		}
		sum.Days++
		sum.TotalMinutes += row.MinutesWorked
		if row.Late {
			sum.LateArrivals++
		}
	}

	for _, sum := range summaries {
		sum.Total = FormatMinutes(sum.TotalMinutes)
		rep.Summary = append(rep.Summary, *sum)
		rep.TotalMinutes += sum.TotalMinutes
		rep.LateArrivals += sum.LateArrivals
	}
	sort.Slice(rep.Summary, func(i, j int) bool {
		if rep.Summary[i].PersonName != rep.Summary[j].PersonName {
			return rep.Summary[i].PersonName < rep.Summary[j].PersonName
		}
		return rep.Summary[i].PersonID < rep.Summary[j].PersonID
	})
	rep.Total = FormatMinutes(rep.TotalMinutes)

	return rep, nil
}

func (s *Service) row(rec Record, override string) Row {
	a := rec.Attendance
	minutes := a.MinutesWorked()

	row := Row{
		PersonID:      a.PersonID,
		PersonName:    rec.PersonName,
		Date:          a.WorkDay.String(),
		Entry:         s.clock(&a.EntryTime),
		Exit:          s.clock(a.ExitTime),
		Worked:        FormatMinutes(minutes),
		MinutesWorked: minutes,
	}
	if row.PersonName == "" {
		row.PersonName = a.PersonID
	}

	official := override
	if official == "" {
		official = rec.ZoneStart
	}
	if official == "" {
		official = s.cfg.OfficialEntry
	}
	row.Late = IsLate(a.EntryTime.In(s.cfg.Location), official)

	return row
}

func (s *Service) clock(t *time.Time) string {
	if t == nil || t.IsZero() {
		return noTime
	}
	return t.In(s.cfg.Location).Format("15:04")
}

// IsLate reports whether entry is strictly after the official time of day.
// An unparseable official time never marks an entry late.
func IsLate(entry time.Time, official string) bool {
	if entry.IsZero() {
		return false
	}
	limit, err := schedule.ParseTimeOfDay(official)
	if err != nil {
		return false
	}
	return schedule.TimeOfDay(entry) > limit
}

// ValidateRange checks from <= to, that neither date is after today and that
// the range spans at most maxDays days, both ends included.
func ValidateRange(from, to, today date.Date, maxDays int) error {
	if from.After(to.Time) {
		return ErrRangeOrder
	}
	if from.After(today.Time) || to.After(today.Time) {
		return ErrRangeFuture
	}
	if days := DaysBetween(from, to); days > maxDays {
		return errors.Wrapf(ErrRangeLength, "%d days requested, at most %d allowed", days, maxDays)
	}
	return nil
}

// DaysBetween counts the days from from to to, both included.
func DaysBetween(from, to date.Date) int {
	return int(to.Sub(from.Time)/(24*time.Hour)) + 1
}

// FormatMinutes renders minutes as HH:MM; hours may exceed two digits.
func FormatMinutes(m int64) string {
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
