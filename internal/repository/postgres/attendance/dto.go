package attendance

import (
	"time"

	"clocker/backend/internal/entity"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/uptrace/bun"
)

type Filter struct {
	Limit    *int
	Offset   *int
	Page     *int
	PersonID *string
	ZoneCode *string
	From     *date.Date
	To       *date.Date
	Open     *bool
}

// row is the attendance table. work_day is kept as time.Time here because
// date.Date does not implement sql.Scanner.
type row struct {
	bun.BaseModel `bun:"table:attendance"`

	ID           string     `bun:"id,pk"`
	PersonID     string     `bun:"person_id"`
	WorkDay      time.Time  `bun:"work_day,type:date"`
	EntryTime    time.Time  `bun:"entry_time"`
	ExitTime     *time.Time `bun:"exit_time"`
	EntryEventID string     `bun:"entry_event_id"`
	ExitEventID  *string    `bun:"exit_event_id"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    *time.Time `bun:"updated_at"`
	DeletedAt    *time.Time `bun:"deleted_at,soft_delete,nullzero"`
	DeletedBy    *int       `bun:"deleted_by"`
}

func fromEntity(a entity.Attendance) row {
	r := row{
		ID:           a.ID,
		PersonID:     a.PersonID,
		WorkDay:      a.WorkDay.ToTime(),
		EntryTime:    a.EntryTime,
		ExitTime:     a.ExitTime,
		EntryEventID: a.EntryEventID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.ExitEventID != "" {
		id := a.ExitEventID
		r.ExitEventID = &id
	}
	return r
}

func (r row) toEntity() entity.Attendance {
	a := entity.Attendance{
		ID:           r.ID,
		PersonID:     r.PersonID,
		WorkDay:      toDate(r.WorkDay),
		EntryTime:    r.EntryTime,
		ExitTime:     r.ExitTime,
		EntryEventID: r.EntryEventID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ExitEventID != nil {
		a.ExitEventID = *r.ExitEventID
	}
	return a
}

func toDate(t time.Time) date.Date {
	return date.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

type GetListResponse struct {
	entity.Attendance
	PersonName    string `json:"person_name"`
	ZoneCode      string `json:"zone_code"`
	MinutesWorked int64  `json:"minutes_worked"`
}

type GetDetailByIdResponse struct {
	GetListResponse
	EntryPhoto *string `json:"entry_photo"`
	ExitPhoto  *string `json:"exit_photo"`
}
