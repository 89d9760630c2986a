package entity

import (
	"time"

	"github.com/uptrace/bun"
)

const DefaultClockType = "ENTRY/EXIT"

// ClockEvent is a single timestamped capture of a person. It is never
// modified after it is stored.
type ClockEvent struct {
	bun.BaseModel `bun:"table:clock_event"`

	ID            string     `json:"id"             bun:"id,pk"`
	PersonID      string     `json:"person_id"      bun:"person_id"`
	ClockedAt     time.Time  `json:"clocked_at"     bun:"clocked_at"`
	Type          string     `json:"type"           bun:"type"`
	Address       string     `json:"address"        bun:"address"`
	Latitude      *float64   `json:"latitude"       bun:"latitude"`
	Longitude     *float64   `json:"longitude"      bun:"longitude"`
	PhotoPath     string     `json:"photo_path"     bun:"photo_path"`
	ThumbnailPath string     `json:"thumbnail_path" bun:"thumbnail_path"`
	CreatedAt     time.Time  `json:"created_at"     bun:"created_at,nullzero,notnull,default:current_timestamp"`
	CreatedBy     *int       `json:"-"              bun:"created_by"`
	DeletedAt     *time.Time `json:"-"              bun:"deleted_at,soft_delete,nullzero"`
	DeletedBy     *int       `json:"-"              bun:"deleted_by"`
}
