package entity

import (
	"github.com/uptrace/bun"
)

// Zone is a named work schedule: the weekdays and the daily time window in
// which clock events are admissible.
type Zone struct {
	bun.BaseModel `bun:"table:zone"`

	ID          int      `json:"id"          bun:"id,pk,autoincrement"`
	Code        string   `json:"code"        bun:"code"`
	Name        string   `json:"name"        bun:"name"`
	Description string   `json:"description" bun:"description"`
	StartTime   string   `json:"start_time"  bun:"start_time"`
	EndTime     string   `json:"end_time"    bun:"end_time"`
	Days        []string `json:"days"        bun:"days,array"`
	Active      bool     `json:"active"      bun:"active"`
	BasicEntity
}
