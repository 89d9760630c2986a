package auth

import (
	"context"

	"clocker/backend/internal/entity"
)

type User interface {
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	GetById(ctx context.Context, id int) (entity.User, error)
}
