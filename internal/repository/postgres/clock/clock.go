package clock

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/pkg/repository/postgresql"
	"clocker/backend/internal/repository/postgres"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) CreateEvent(ctx context.Context, event entity.ClockEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	if _, err := r.NewInsert().Model(&event).Exec(ctx); err != nil {
		return web.NewRequestError(errors.Wrap(err, "creating clock event"), http.StatusInternalServerError)
	}

	return nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{"c.deleted_at IS NULL"}
	var args []interface{}

	if filter.PersonID != nil {
		where = append(where, "c.person_id = ?")
		args = append(args, *filter.PersonID)
	}
	if filter.From != nil {
		where = append(where, "c.clocked_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, "c.clocked_at < ?")
		args = append(args, *filter.To)
	}
	whereQuery := "WHERE " + strings.Join(where, " AND ")

	var limitQuery, offsetQuery string

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}

	if filter.Limit != nil {
		limitQuery += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	if filter.Offset != nil {
		offsetQuery += fmt.Sprintf(" OFFSET %d", *filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT
			c.id,
			c.person_id,
			concat_ws(' ', NULLIF(p.name, ''), NULLIF(p.first_last_name, ''), NULLIF(p.second_last_name, '')),
			c.clocked_at,
			c.type,
			c.address,
			c.latitude,
			c.longitude,
			c.photo_path,
			c.thumbnail_path
		FROM clock_event c
		LEFT JOIN person p ON p.id = c.person_id

		%s ORDER BY c.clocked_at DESC %s %s
	`, whereQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting clock events"), http.StatusBadRequest)
	}
	defer rows.Close()

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.PersonID,
			&detail.PersonName,
			&detail.ClockedAt,
			&detail.Type,
			&detail.Address,
			&detail.Latitude,
			&detail.Longitude,
			&detail.PhotoPath,
			&detail.ThumbnailPath); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning clock event list"), http.StatusBadRequest)
		}

		list = append(list, detail)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(c.id)
		FROM clock_event c
			%s
	`, whereQuery)

	count := 0
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "counting clock events"), http.StatusBadRequest)
	}

	return list, count, nil
}

func (r Repository) GetDetailById(ctx context.Context, id string) (entity.ClockEvent, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return entity.ClockEvent{}, err
	}

	var detail entity.ClockEvent

	err = r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ClockEvent{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return entity.ClockEvent{}, web.NewRequestError(errors.Wrap(err, "selecting clock event"), http.StatusBadRequest)
	}

	return detail, nil
}

// Delete soft deletes the event. Attendance already paired with it keeps
// its times.
func (r Repository) Delete(ctx context.Context, id string) error {
	return r.DeleteRow(ctx, "clock_event", id)
}
