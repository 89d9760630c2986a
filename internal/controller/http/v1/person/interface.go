package person

import (
	"context"

	"clocker/backend/internal/entity"
	"clocker/backend/internal/repository/postgres/person"
)

type Person interface {
	GetList(ctx context.Context, filter person.Filter) ([]entity.Person, int, error)
	GetAll(ctx context.Context) ([]entity.Person, error)
	GetDetailById(ctx context.Context, id string) (entity.Person, error)
	Create(ctx context.Context, request person.CreateRequest) (entity.Person, error)
	CreateMany(ctx context.Context, persons []entity.Person) (int, error)
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
	UpdateColumns(ctx context.Context, request person.UpdateRequest) error
	Delete(ctx context.Context, id string) error
}

type Zone interface {
	Codes(ctx context.Context) (map[string]struct{}, error)
}
