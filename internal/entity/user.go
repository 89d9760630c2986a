package entity

import (
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID       int     `json:"id"       bun:"id,pk,autoincrement"`
	Name     *string `json:"name"     bun:"name"`
	Email    *string `json:"email"    bun:"email"`
	Password *string `json:"-"        bun:"password"`
	Role     *string `json:"role"     bun:"role"`
	Active   bool    `json:"active"   bun:"active"`
	BasicEntity
}
