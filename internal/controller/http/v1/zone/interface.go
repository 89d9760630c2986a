package zone

import (
	"context"

	"clocker/backend/internal/entity"
	"clocker/backend/internal/repository/postgres/zone"
)

type Zone interface {
	GetList(ctx context.Context, filter zone.Filter) ([]entity.Zone, int, error)
	GetActive(ctx context.Context) ([]entity.Zone, error)
	GetByCode(ctx context.Context, code string) (entity.Zone, error)
	GetDetailById(ctx context.Context, id int) (entity.Zone, error)
	Create(ctx context.Context, request zone.CreateRequest) (entity.Zone, error)
	UpdateColumns(ctx context.Context, request zone.UpdateRequest) (string, error)
	Delete(ctx context.Context, id int) (string, error)
}

type Cache interface {
	Invalidate(ctx context.Context, codes ...string)
}
