package attendance

import (
	"context"

	"clocker/backend/internal/repository/postgres/attendance"
)

type Attendance interface {
	GetList(ctx context.Context, filter attendance.Filter) ([]attendance.GetListResponse, int, error)
	GetDetailById(ctx context.Context, id string) (attendance.GetDetailByIdResponse, error)
	Delete(ctx context.Context, id string) error
}
