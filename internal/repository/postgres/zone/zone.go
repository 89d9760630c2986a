package zone

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/pkg/repository/postgresql"
	"clocker/backend/internal/repository/postgres"
	"clocker/backend/internal/service/schedule"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) GetByCode(ctx context.Context, code string) (entity.Zone, error) {
	var detail entity.Zone

	err := r.NewSelect().Model(&detail).Where("code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Zone{}, web.NewRequestError(errors.Wrapf(postgres.ErrNotFound, "zone %s", code), http.StatusNotFound)
	}
	if err != nil {
		return entity.Zone{}, web.NewRequestError(errors.Wrap(err, "selecting zone"), http.StatusInternalServerError)
	}

	return detail, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]entity.Zone, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	var list []entity.Zone

	q := r.NewSelect().Model(&list).Order("code")

	if filter.Search != nil {
		search := "%" + strings.TrimSpace(*filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("code ILIKE ?", search).WhereOr("name ILIKE ?", search)
		})
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}
	if filter.Limit != nil {
		q = q.Limit(*filter.Limit)
	}
	if filter.Offset != nil {
		q = q.Offset(*filter.Offset)
	}

	count, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting zones"), http.StatusBadRequest)
	}

	return list, count, nil
}

func (r Repository) GetActive(ctx context.Context) ([]entity.Zone, error) {
	var list []entity.Zone

	if err := r.NewSelect().Model(&list).Where("active").Order("code").Scan(ctx); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting active zones"), http.StatusInternalServerError)
	}

	return list, nil
}

// Codes returns the codes of all zones.
func (r Repository) Codes(ctx context.Context) (map[string]struct{}, error) {
	var codes []string
	if err := r.NewSelect().Model((*entity.Zone)(nil)).Column("code").Scan(ctx, &codes); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting zone codes"), http.StatusInternalServerError)
	}

	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set, nil
}

func (r Repository) GetDetailById(ctx context.Context, id int) (entity.Zone, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return entity.Zone{}, err
	}

	var detail entity.Zone

	err = r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Zone{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return entity.Zone{}, web.NewRequestError(errors.Wrap(err, "selecting zone detail"), http.StatusBadRequest)
	}

	return detail, nil
}

func (r Repository) Create(ctx context.Context, request CreateRequest) (entity.Zone, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return entity.Zone{}, err
	}

	if err := r.ValidateStruct(&request, "Code", "Name", "StartTime", "EndTime", "Days"); err != nil {
		return entity.Zone{}, err
	}

	zone := entity.Zone{
		Code:      strings.TrimSpace(*request.Code),
		Name:      strings.TrimSpace(*request.Name),
		StartTime: strings.TrimSpace(*request.StartTime),
		EndTime:   strings.TrimSpace(*request.EndTime),
		Days:      request.Days,
		Active:    request.Active == nil || *request.Active,
	}
	if request.Description != nil {
		zone.Description = *request.Description
	}
	if err := validateSchedule(zone); err != nil {
		return entity.Zone{}, err
	}

	exists, err := r.NewSelect().Model((*entity.Zone)(nil)).Where("code = ?", zone.Code).Exists(ctx)
	if err != nil {
		return entity.Zone{}, web.NewRequestError(errors.Wrap(err, "zone code check"), http.StatusInternalServerError)
	}
	if exists {
		return entity.Zone{}, web.NewRequestError(errors.New("zone code is used"), http.StatusBadRequest)
	}

	zone.CreatedAt = time.Now()
	zone.CreatedBy = &claims.UserId

	if _, err := r.NewInsert().Model(&zone).Returning("id").Exec(ctx); err != nil {
		return entity.Zone{}, web.NewRequestError(errors.Wrap(err, "creating zone"), http.StatusBadRequest)
	}

	return zone, nil
}

// UpdateColumns patches the zone and returns its code so callers can drop
// cached copies.
func (r Repository) UpdateColumns(ctx context.Context, request UpdateRequest) (string, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return "", err
	}

	var current entity.Zone
	err = r.NewSelect().Model(&current).Where("id = ?", request.ID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return "", web.NewRequestError(errors.Wrap(err, "selecting zone"), http.StatusInternalServerError)
	}

	q := r.NewUpdate().Table("zone").Where("deleted_at IS NULL AND id = ?", request.ID)

	if request.Name != nil {
		q.Set("name = ?", strings.TrimSpace(*request.Name))
	}
	if request.Description != nil {
		q.Set("description = ?", *request.Description)
	}
	if request.StartTime != nil {
		current.StartTime = strings.TrimSpace(*request.StartTime)
		q.Set("start_time = ?", current.StartTime)
	}
	if request.EndTime != nil {
		current.EndTime = strings.TrimSpace(*request.EndTime)
		q.Set("end_time = ?", current.EndTime)
	}
	if request.Days != nil {
		current.Days = request.Days
		q.Set("days = ?", pgdialect.Array(request.Days))
	}
	if request.Active != nil {
		q.Set("active = ?", *request.Active)
	}

	if err := validateSchedule(current); err != nil {
		return "", err
	}

	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	if _, err := q.Exec(ctx); err != nil {
		return "", web.NewRequestError(errors.Wrap(err, "updating zone"), http.StatusBadRequest)
	}

	return current.Code, nil
}

// Delete soft deletes the zone and returns its code.
func (r Repository) Delete(ctx context.Context, id int) (string, error) {
	var code string
	err := r.NewSelect().Model((*entity.Zone)(nil)).Column("code").Where("id = ?", id).Scan(ctx, &code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return "", web.NewRequestError(errors.Wrap(err, "selecting zone"), http.StatusInternalServerError)
	}

	return code, r.DeleteRow(ctx, "zone", id)
}

// validateSchedule rejects zones the validator could never accept a clock
// event for.
func validateSchedule(z entity.Zone) error {
	var fields []web.FieldError

	start, err := schedule.ParseTimeOfDay(z.StartTime)
	if err != nil {
		fields = append(fields, web.FieldError{Field: "start_time", Error: "expected HH:MM or HH:MM:SS"})
	}
	end, err2 := schedule.ParseTimeOfDay(z.EndTime)
	if err2 != nil {
		fields = append(fields, web.FieldError{Field: "end_time", Error: "expected HH:MM or HH:MM:SS"})
	}
	if err == nil && err2 == nil && start > end {
		fields = append(fields, web.FieldError{Field: "end_time", Error: "must not be before start_time"})
	}
	if len(z.Days) == 0 {
		fields = append(fields, web.FieldError{Field: "days", Error: "required"})
	} else if _, err := schedule.ParseDays(z.Days); err != nil {
		fields = append(fields, web.FieldError{Field: "days", Error: err.Error()})
	}

	if len(fields) > 0 {
		return &web.Error{Err: errors.New("invalid zone schedule"), Status: http.StatusBadRequest, Fields: fields}
	}
	return nil
}
