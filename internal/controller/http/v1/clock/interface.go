package clock

import (
	"context"

	"clocker/backend/internal/entity"
	"clocker/backend/internal/repository/postgres/clock"
	"clocker/backend/internal/service/clocking"
)

type Capturer interface {
	Capture(ctx context.Context, request clocking.CaptureRequest) (clocking.CaptureResponse, error)
}

type Clock interface {
	GetList(ctx context.Context, filter clock.Filter) ([]clock.GetListResponse, int, error)
	GetDetailById(ctx context.Context, id string) (entity.ClockEvent, error)
	Delete(ctx context.Context, id string) error
}
