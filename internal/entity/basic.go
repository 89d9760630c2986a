package entity

import "time"

type BasicEntity struct {
	CreatedAt time.Time  `json:"created_at" bun:"created_at,nullzero,notnull,default:current_timestamp"`
	CreatedBy *int       `json:"-"          bun:"created_by"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bun:"updated_at"`
	UpdatedBy *int       `json:"-"          bun:"updated_by"`
	DeletedAt *time.Time `json:"-"          bun:"deleted_at,soft_delete,nullzero"`
	DeletedBy *int       `json:"-"          bun:"deleted_by"`
}
