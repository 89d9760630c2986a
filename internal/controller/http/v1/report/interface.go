package report

import (
	"context"

	"clocker/backend/internal/service/report"
)

type Builder interface {
	Build(ctx context.Context, filter report.Filter) (report.Report, error)
}
