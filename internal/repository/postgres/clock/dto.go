package clock

import (
	"time"
)

type Filter struct {
	Limit    *int
	Offset   *int
	Page     *int
	PersonID *string
	From     *time.Time
	To       *time.Time
}

type GetListResponse struct {
	ID            string    `json:"id"`
	PersonID      string    `json:"person_id"`
	PersonName    string    `json:"person_name"`
	ClockedAt     time.Time `json:"clocked_at"`
	Type          string    `json:"type"`
	Address       string    `json:"address"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	PhotoPath     string    `json:"photo_path"`
	ThumbnailPath string    `json:"thumbnail_path"`
}
