package entity

import (
	"regexp"
	"strings"

	"github.com/uptrace/bun"
)

var personIDRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidPersonID reports whether id is usable as a person id. Ids name the
// person's media folder, so dot-only names are refused along with path
// separators.
func ValidPersonID(id string) bool {
	return personIDRegex.MatchString(id) && strings.Trim(id, ".") != ""
}

type Person struct {
	bun.BaseModel `bun:"table:person"`

	ID             string `json:"id"               bun:"id,pk"`
	Name           string `json:"name"             bun:"name"`
	FirstLastName  string `json:"first_last_name"  bun:"first_last_name"`
	SecondLastName string `json:"second_last_name" bun:"second_last_name"`
	Nationality    string `json:"nationality"      bun:"nationality"`
	IDDocument     string `json:"id_document"      bun:"id_document"`
	ZoneCode       string `json:"zone_code"        bun:"zone_code"`
	Active         bool   `json:"active"           bun:"active"`
	BasicEntity
}

// FullName joins the non-empty name parts with single spaces.
func (p Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Name, p.FirstLastName, p.SecondLastName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
